package doctor

import (
	"fmt"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/discover"
)

// NodeDirsCheck verifies the node directory glob matches something.
type NodeDirsCheck struct {
	Cfg *config.Config
}

func (c *NodeDirsCheck) Name() string     { return "node_dirs" }
func (c *NodeDirsCheck) Category() string { return "NODES" }

func (c *NodeDirsCheck) Run() CheckResult {
	resolver := discover.NewResolver(nil)
	endpoints, err := resolver.Resolve(c.Cfg.NodeGlob(), c.Cfg.LogOverrideGlob())
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Discovery failed: %v", err),
			Suggestion: "Check the glob syntax in nodes.path (e.g. ~/.local/share/autonomi/node/*)",
		}
	}

	if len(endpoints) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("No node directories match %s", c.Cfg.Nodes.Path),
			Suggestion: "Check nodes.path in the config, or pass --path",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d node%s discovered", len(endpoints), pluralize(len(endpoints))),
	}
}

// LogAddrsCheck verifies node logs announce a metrics address.
type LogAddrsCheck struct {
	Cfg *config.Config
}

func (c *LogAddrsCheck) Name() string     { return "log_addrs" }
func (c *LogAddrsCheck) Category() string { return "NODES" }

func (c *LogAddrsCheck) Run() CheckResult {
	resolver := discover.NewResolver(nil)
	endpoints, err := resolver.Resolve(c.Cfg.NodeGlob(), c.Cfg.LogOverrideGlob())
	if err != nil || len(endpoints) == 0 {
		// NodeDirsCheck reports the discovery outcome
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No node logs to scan",
		}
	}

	withAddr := 0
	for _, ep := range endpoints {
		if ep.Addr != "" {
			withAddr++
		}
	}

	if withAddr == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("None of the %d node logs announce a metrics address", len(endpoints)),
			Suggestion: "Nodes may still be starting; check logs/antnode.log under each node root",
		}
	}

	if withAddr < len(endpoints) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%d of %d nodes announce a metrics address", withAddr, len(endpoints)),
			Suggestion: "The rest may still be starting up",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("All %d node%s announce a metrics address", withAddr, pluralize(withAddr)),
	}
}

// NewNodeChecks creates the node discovery checks.
func NewNodeChecks(cfg *config.Config) []Check {
	return []Check{
		&NodeDirsCheck{Cfg: cfg},
		&LogAddrsCheck{Cfg: cfg},
	}
}
