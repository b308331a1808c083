// Package templates holds the dashboard's server-rendered HTML pages.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

var (
	// Dashboard is the main usage charts page.
	Dashboard = parse("dashboard.html")
	// MoreStats is the detailed cost analysis page, including the cost matrix.
	MoreStats = parse("morestats.html")
	// Pricing is the static price table page.
	Pricing = parse("pricing.html")
	// VPNError is the access-denied page for requests outside allowed subnets.
	VPNError = parse("vpn_error.html")
)

func parse(name string) *template.Template {
	return template.Must(template.ParseFS(files, name))
}
