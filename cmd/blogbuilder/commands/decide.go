package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/authorbio"
	derrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// DecideCmd implements the 'decide' command.
type DecideCmd struct {
	File   string `arg:"" type:"existingfile" help:"Markdown page to evaluate"`
	Format string `short:"f" enum:"yaml,json" default:"yaml" help:"Output format (yaml|json)"`
}

func (d *DecideCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(d.File)
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "page could not be read").
			WithContext("page", d.File)
	}
	page, err := frontmatter.Parse(content)
	if err != nil {
		return derrors.ContentParseFailed(d.File, err)
	}
	for _, issue := range page.Issues {
		g.logger().Warn("Ignoring front matter value", logfields.Page(d.File), logfields.Error(issue))
	}

	decision := authorbio.Decide(page.FrontMatter, cfg.SiteParams())
	return writeDecision(g, d.Format, decision)
}

func writeDecision(g *Global, format string, decision authorbio.Decision) error {
	switch format {
	case "json":
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(decision)
	default:
		enc := yaml.NewEncoder(g.out())
		enc.SetIndent(2)
		if err := enc.Encode(decision); err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
		return enc.Close()
	}
}
