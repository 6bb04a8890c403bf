package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

const samplePost = `---
title: Hello World
date: %s
# hide_author_bio: true
---
Welcome to the new blog. The author bio below comes from the site params.
`

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Directory for the new site (default: the config file's directory)"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	cfgPath := root.Config
	if i.Output != "" {
		cfgPath = filepath.Join(i.Output, config.DefaultPath)
	}
	return RunInit(g, cfgPath, i.Force)
}

// RunInit writes an example configuration and, when the site has no content
// yet, a sample post.
func RunInit(g *Global, cfgPath string, force bool) error {
	_, _ = fmt.Fprintf(g.out(), "Writing configuration to %s\n", cfgPath)
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
		return err
	}
	if err := config.Init(cfgPath, force); err != nil {
		return err
	}

	postPath := filepath.Join(filepath.Dir(cfgPath), "content", "posts", "hello-world.md")
	if _, err := os.Stat(postPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(postPath), 0o750); err != nil {
			return err
		}
		post := fmt.Sprintf(samplePost, today())
		if err := os.WriteFile(postPath, []byte(post), 0o600); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.out(), "Created sample post %s\n", postPath)
	}
	_, _ = fmt.Fprintln(g.out(), "initialized successfully")
	return nil
}

func today() string { return time.Now().Format("2006-01-02") }
