package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/discover"
	"github.com/skyrmion/antop/internal/metrics"
)

// EndpointsCheck polls every announced metrics endpoint once.
type EndpointsCheck struct {
	Cfg *config.Config
}

func (c *EndpointsCheck) Name() string     { return "endpoints" }
func (c *EndpointsCheck) Category() string { return "METRICS" }

func (c *EndpointsCheck) Run() CheckResult {
	resolver := discover.NewResolver(nil)
	endpoints, err := resolver.Resolve(c.Cfg.NodeGlob(), c.Cfg.LogOverrideGlob())
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No endpoints to probe",
		}
	}

	announced := endpoints[:0]
	for _, ep := range endpoints {
		if ep.Addr != "" {
			announced = append(announced, ep)
		}
	}
	if len(announced) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No endpoints to probe",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*metrics.DefaultTimeout)
	defer cancel()

	fetcher := metrics.NewFetcher(metrics.DefaultTimeout, nil)
	var unreachable []string
	for res := range fetcher.FetchAll(ctx, announced) {
		if res.Err != nil {
			unreachable = append(unreachable, res.Endpoint.ID)
		}
	}

	switch {
	case len(unreachable) == 0:
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("All %d endpoint%s responded", len(announced), pluralize(len(announced))),
		}
	case len(unreachable) == len(announced):
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("None of the %d endpoints responded", len(announced)),
			Suggestion: "Check that the antnode processes are running",
		}
	default:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%d of %d endpoints unreachable: %s", len(unreachable), len(announced), summarizeIDs(unreachable)),
			Suggestion: "The listed nodes may have stopped or restarted on a new port",
		}
	}
}

// summarizeIDs joins up to three node IDs, eliding the rest.
func summarizeIDs(ids []string) string {
	const show = 3
	if len(ids) <= show {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(ids[:show], ", "), len(ids)-show)
}

// NewEndpointChecks creates the endpoint reachability checks.
func NewEndpointChecks(cfg *config.Config) []Check {
	return []Check{
		&EndpointsCheck{Cfg: cfg},
	}
}
