package container

import (
	"fmt"
	"strconv"
	"strings"

	"traefiker/internal/constants"
)

// Redirect is a regex redirect rendered as a proxy middleware
type Redirect struct {
	Regex       string
	Replacement string
	Permanent   bool
}

// RoutingOptions carries everything the proxy needs to route to a service container
type RoutingOptions struct {
	Service      string
	Project      string
	Hosts        []string
	Redirects    []Redirect
	Network      string
	Entrypoint   string
	CertResolver string
}

// Labels renders ownership and proxy routing labels for a service container.
// The proxy discovers containers by these labels; nothing else is pushed to it.
func Labels(opts RoutingOptions) map[string]string {
	labels := map[string]string{
		constants.LabelManaged: "true",
		constants.LabelService: opts.Service,
		"traefik.enable":       "true",
	}
	if opts.Project != "" {
		labels[constants.LabelProject] = opts.Project
	}
	if opts.Network != "" {
		labels["traefik.docker.network"] = opts.Network
	}

	router := "traefik.http.routers." + opts.Service
	if rule := HostRule(opts.Hosts); rule != "" {
		labels[router+".rule"] = rule
	}
	if opts.Entrypoint != "" {
		labels[router+".entrypoints"] = opts.Entrypoint
	}
	if opts.CertResolver != "" {
		labels[router+".tls"] = "true"
		labels[router+".tls.certresolver"] = opts.CertResolver
	}

	middlewares := make([]string, 0, len(opts.Redirects))
	for i, redirect := range opts.Redirects {
		name := fmt.Sprintf("%s-redirect-%d", opts.Service, i)
		prefix := "traefik.http.middlewares." + name + ".redirectregex"
		labels[prefix+".regex"] = redirect.Regex
		labels[prefix+".replacement"] = redirect.Replacement
		labels[prefix+".permanent"] = strconv.FormatBool(redirect.Permanent)
		middlewares = append(middlewares, name)
	}
	if len(middlewares) > 0 {
		labels[router+".middlewares"] = strings.Join(middlewares, ",")
	}

	return labels
}

// HostRule renders a router rule matching any of the hosts, in order
func HostRule(hosts []string) string {
	rules := make([]string, 0, len(hosts))
	for _, host := range hosts {
		if host == "" {
			continue
		}
		rules = append(rules, "Host(`"+host+"`)")
	}
	return strings.Join(rules, " || ")
}
