package main

import (
	"time"

	"github.com/alexisbeaulieu97/tagsync/internal/application/build"
	"github.com/alexisbeaulieu97/tagsync/internal/config"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/transform"
)

// buildOptionsFor resolves the Builder options for targetWorkspace, loading
// a session config file when configPath is set and falling back to
// build.DefaultOptions otherwise.
func buildOptionsFor(targetWorkspace, configPath string) (build.Options, error) {
	if configPath == "" {
		return build.DefaultOptions(targetWorkspace), nil
	}

	cfg, err := config.ParseConfig(configPath)
	if err != nil {
		return build.Options{}, err
	}
	session := cfg.ToSessionConfig()

	return build.Options{
		TargetWorkspace:   targetWorkspace,
		InterRequestDelay: time.Duration(session.InterRequestDelayMS) * time.Millisecond,
		MaxRetries:        session.MaxRetries,
		BackoffBase:       time.Duration(session.BackoffBaseMS) * time.Millisecond,
		BackoffCap:        time.Duration(session.BackoffCapMS) * time.Millisecond,
		TransformOptions: transform.Options{
			NamePrefix: session.NamePrefix,
			NameSuffix: session.NameSuffix,
		},
	}, nil
}
