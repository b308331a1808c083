package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peterdir/bedrock-usage/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/smithy-go"
)

// CloudWatchClient implements LogQueryClient against CloudWatch Logs Insights.
type CloudWatchClient struct {
	client *cloudwatchlogs.Client
}

// NewCloudWatchClient loads the AWS configuration (honoring the configured
// shared profile and region) and builds the Logs Insights client.
func NewCloudWatchClient(ctx context.Context, cfg models.AWSConfig) (*CloudWatchClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, models.NewNoCredentialsError(err)
	}

	return &CloudWatchClient{client: cloudwatchlogs.NewFromConfig(awsCfg)}, nil
}

// StartQuery begins an asynchronous Logs Insights query over the window.
func (c *CloudWatchClient) StartQuery(ctx context.Context, logGroup string, window models.TimeRange, queryString string) (string, error) {
	out, err := c.client.StartQuery(ctx, &cloudwatchlogs.StartQueryInput{
		LogGroupName: aws.String(logGroup),
		StartTime:    aws.Int64(window.Start.Unix()),
		EndTime:      aws.Int64(window.End.Unix()),
		QueryString:  aws.String(queryString),
	})
	if err != nil {
		return "", mapAWSError(err, logGroup)
	}
	return aws.ToString(out.QueryId), nil
}

// QueryResults fetches the current status and any result rows of a query.
func (c *CloudWatchClient) QueryResults(ctx context.Context, queryID string) (*QueryPoll, error) {
	out, err := c.client.GetQueryResults(ctx, &cloudwatchlogs.GetQueryResultsInput{
		QueryId: aws.String(queryID),
	})
	if err != nil {
		return nil, mapAWSError(err, "")
	}

	poll := &QueryPoll{Status: mapQueryStatus(out.Status)}
	if poll.Status == models.QueryStatusFailed && out.Statistics != nil {
		poll.Detail = fmt.Sprintf("records matched %.0f, scanned %.0f",
			out.Statistics.RecordsMatched, out.Statistics.RecordsScanned)
	}

	for _, fields := range out.Results {
		row := make(ResultRow, len(fields))
		for _, f := range fields {
			row[aws.ToString(f.Field)] = aws.ToString(f.Value)
		}
		poll.Rows = append(poll.Rows, row)
	}

	return poll, nil
}

// StopQuery cancels a still-running query on the external service.
func (c *CloudWatchClient) StopQuery(ctx context.Context, queryID string) error {
	_, err := c.client.StopQuery(ctx, &cloudwatchlogs.StopQueryInput{
		QueryId: aws.String(queryID),
	})
	if err != nil {
		return mapAWSError(err, "")
	}
	return nil
}

func mapQueryStatus(status cwtypes.QueryStatus) models.QueryStatus {
	switch status {
	case cwtypes.QueryStatusComplete:
		return models.QueryStatusComplete
	case cwtypes.QueryStatusFailed, cwtypes.QueryStatusTimeout:
		return models.QueryStatusFailed
	case cwtypes.QueryStatusCancelled:
		return models.QueryStatusCancelled
	default:
		// Scheduled, Running, Unknown: keep polling.
		return models.QueryStatusRunning
	}
}

// mapAWSError translates AWS SDK failures into the application error taxonomy.
func mapAWSError(err error, logGroup string) error {
	var notFound *cwtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return models.NewConfigurationError(logGroup, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return models.NewAuthorizationError(err)
		case "ExpiredToken", "ExpiredTokenException", "RequestExpired":
			return models.NewCredentialsExpiredError(err)
		case "UnrecognizedClientException", "InvalidClientTokenId", "MissingAuthenticationToken":
			return models.NewNoCredentialsError(err)
		}
	}

	if strings.Contains(err.Error(), "failed to retrieve credentials") ||
		strings.Contains(err.Error(), "no EC2 IMDS role found") {
		return models.NewNoCredentialsError(err)
	}

	return models.NewQueryFailedError("", err)
}
