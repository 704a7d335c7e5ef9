package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/suggest"
)

func main() {
	fs := config.NewFlagSet(os.Args[0])
	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.Build(logging.Config{Level: cfg.LogLevel, Env: cfg.Env, Output: cfg.LogFile})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	forms, err := loadForms(cfg.SchemaDir)
	if err != nil {
		log.Fatalf("Failed to load forms: %v", err)
	}
	if cfg.List {
		for _, id := range forms.IDs() {
			spec, _ := forms.Form(id)
			fmt.Printf("%-16s %s\n", id, spec.Title)
		}
		return
	}

	spec, ok := forms.Form(cfg.Form)
	if !ok {
		log.Fatalf("unknown form %q (available: %s)", cfg.Form, strings.Join(forms.IDs(), ", "))
	}

	client, err := suggestionClient(cfg.SuggestURL, cfg.Offline)
	if err != nil {
		log.Fatalf("invalid suggestion client: %v", err)
	}

	runner := tui.New()
	opts := []formflow.Option{
		formflow.WithLogger(logger),
		formflow.WithNotifier(runner),
		formflow.WithSubmitter(submitterFor(spec, cfg.SubmitDelay)),
		formflow.WithSuggestionTimeout(cfg.SuggestTimeout),
	}
	if client != nil {
		opts = append(opts, formflow.WithSuggestionClient(client))
	}

	session, err := formflow.New(spec, opts...)
	if err != nil {
		log.Fatalf("Failed to mount form: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := runner.Run(ctx, session)
	switch {
	case errors.Is(err, tui.ErrAborted), errors.Is(err, tui.ErrDeclined), errors.Is(err, context.Canceled):
		logger.Info("form left without submitting", zap.Error(err))
		os.Exit(1)
	case err != nil:
		logger.Error("form run failed", zap.Error(err))
		os.Exit(1)
	}

	out, err := json.MarshalIndent(redact(spec, res.Values), "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}

func loadForms(dir string) (*schema.Store, error) {
	if strings.TrimSpace(dir) == "" {
		return schema.Default()
	}
	return schema.LoadFS(os.DirFS(dir))
}

func suggestionClient(endpoint string, offline bool) (suggest.Client, error) {
	if offline {
		return suggest.StaticClient{Guess: true}, nil
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, nil
	}
	return suggest.NewHTTPClient(endpoint)
}

func submitterFor(spec model.FormSchema, delay time.Duration) submit.Submitter {
	simulated := submit.SimulatedSubmitter{Delay: delay}
	if delay == 0 {
		simulated.Delay = -1
	}
	if spec.ID == schema.FormSignin {
		return submit.CredentialSubmitter{SimulatedSubmitter: simulated}
	}
	return simulated
}

func redact(spec model.FormSchema, values map[model.FieldKey]string) map[model.FieldKey]string {
	out := make(map[model.FieldKey]string, len(values))
	for key, value := range values {
		if field, ok := spec.Field(key); ok && field.Kind == model.FieldKindPassword {
			value = strings.Repeat("*", len(value))
		}
		out[key] = value
	}
	return out
}
