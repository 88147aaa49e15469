package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/config"
)

// configCmd groups the configuration-inspection subcommands: printing an
// example configuration and validating the loaded one.
type configCmd struct {
	Example configExampleCmd `cmd:"" help:"Print a YAML configuration populated with defaults."`
	Verify  configVerifyCmd  `cmd:"" help:"Validate the loaded configuration and report any warnings."`
}

type configExampleCmd struct{}

func (cmd *configExampleCmd) Run(_ *globalOptions) error {
	out, err := config.ExampleYAML()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

type configVerifyCmd struct{}

func (cmd *configVerifyCmd) Run(opts *globalOptions) error {
	if err := opts.cfg.Validate(); err != nil {
		opts.logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	for _, w := range opts.cfg.CheckConfig() {
		opts.logger.Warn("configuration warning", zap.String("field", w.Field), zap.String("message", w.Message))
	}
	fmt.Println("configuration is valid")
	return nil
}
