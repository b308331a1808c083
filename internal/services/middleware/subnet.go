package middleware

import (
	"bytes"
	"net/netip"
	"strings"

	"github.com/peterdir/bedrock-usage/internal/templates"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// localhostPrefix is always allowed regardless of the configured list.
var localhostPrefix = netip.MustParsePrefix("127.0.0.0/8")

// SubnetGuard restricts dashboard access to a CIDR allow-list. With no
// configured subnets the guard is a no-op.
type SubnetGuard struct {
	enabled  bool
	allowed  []netip.Prefix
	rawCIDRs []string
}

// NewSubnetGuard parses a comma-separated CIDR list. Invalid entries are
// logged and skipped; localhost is always included.
func NewSubnetGuard(subnetsOnly string) *SubnetGuard {
	g := &SubnetGuard{}
	if strings.TrimSpace(subnetsOnly) == "" {
		return g
	}
	g.enabled = true

	for _, s := range strings.Split(subnetsOnly, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			fiberlog.Warnf("Invalid subnet in SUBNETS_ONLY: %s - %v", s, err)
			continue
		}
		g.allowed = append(g.allowed, prefix)
		g.rawCIDRs = append(g.rawCIDRs, s)
	}

	g.allowed = append(g.allowed, localhostPrefix)
	return g
}

// Handler returns the fiber middleware enforcing the allow-list.
func (g *SubnetGuard) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !g.enabled {
			return c.Next()
		}

		clientIP := clientAddress(c)
		if clientIP == "" {
			fiberlog.Warn("Unable to determine client IP, denying access")
			return renderDenied(c, "unknown")
		}

		addr, err := netip.ParseAddr(clientIP)
		if err != nil {
			// An unparseable address means a proxy misconfiguration, not an
			// intruder; fail open as the check itself is broken.
			fiberlog.Errorf("Error checking subnet access for %q: %v", clientIP, err)
			return c.Next()
		}

		for _, prefix := range g.allowed {
			if prefix.Contains(addr) {
				return c.Next()
			}
		}

		return renderDenied(c, clientIP)
	}
}

// clientAddress prefers the first hop of X-Forwarded-For, which load
// balancers and API gateways set in front of the dashboard.
func clientAddress(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return c.IP()
}

func renderDenied(c *fiber.Ctx, clientIP string) error {
	var buf bytes.Buffer
	if err := templates.VPNError.Execute(&buf, fiber.Map{"ClientIP": clientIP}); err != nil {
		return c.Status(fiber.StatusForbidden).SendString("Access denied")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusForbidden).Send(buf.Bytes())
}
