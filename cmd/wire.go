package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ofckit/ofc/internal/adapters/chat/slack"
	tomlrepo "github.com/ofckit/ofc/internal/adapters/repo/toml"
	"github.com/ofckit/ofc/internal/adapters/scan/ping"
	chainstore "github.com/ofckit/ofc/internal/adapters/secrets/chain"
	"github.com/ofckit/ofc/internal/application"
	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
	"github.com/ofckit/ofc/internal/retry"
)

const (
	envPrefix          = "OFC"
	slackTokenName     = "slack-token"
	defaultStaleAfter  = time.Hour
	defaultCycleLength = 2 * time.Minute
)

type app struct {
	cfg         *viper.Viper
	roster      *tomlrepo.RosterSource
	snapshots   *tomlrepo.SnapshotStore
	credentials ports.CredentialStore
	httpClient  *http.Client
	now         func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	roster, err := tomlrepo.NewRosterSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire roster source: %w", err)
	}

	snapshots, err := tomlrepo.NewSnapshotStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire snapshot store: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	credentials, err := chainstore.NewEnvFirstWithFileFallback(envPrefix, filepath.Join(homeDir, ".ofc", "credentials"))
	if err != nil {
		return nil, fmt.Errorf("wire credential store chain: %w", err)
	}

	return &app{
		cfg:         cfg,
		roster:      roster,
		snapshots:   snapshots,
		credentials: credentials,
		httpClient:  http.DefaultClient,
		now:         time.Now,
	}, nil
}

func loadConfig() (*viper.Viper, error) {
	cfg := viper.New()

	cfg.SetDefault("presence.text", "At the office")
	cfg.SetDefault("presence.emoji", ":office:")
	cfg.SetDefault("presence.break_indicators", domain.DefaultBreakIndicators)
	cfg.SetDefault("scan.subnet", "")
	cfg.SetDefault("scan.hosts", []string{})
	cfg.SetDefault("scan.workers", 10)
	cfg.SetDefault("scan.probe_timeout", 2*time.Second)
	cfg.SetDefault("scan.resolve_names", true)
	cfg.SetDefault("apply.concurrency", 1)
	cfg.SetDefault("retry.max_attempts", retry.DefaultPolicy.MaxAttempts)
	cfg.SetDefault("retry.base_delay", retry.DefaultPolicy.BaseDelay)
	cfg.SetDefault("retry.multiplier", retry.DefaultPolicy.Multiplier)
	cfg.SetDefault("cycle.timeout", defaultCycleLength)
	cfg.SetDefault("watch.interval", 5*time.Minute)
	cfg.SetDefault("slack.base_url", slack.DefaultBaseURL)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	cfg.AddConfigPath(filepath.Join(homeDir, ".ofc"))

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

func (a *app) scanner() *ping.Scanner {
	return ping.New(ping.Options{
		Workers:      a.cfg.GetInt("scan.workers"),
		ProbeTimeout: a.cfg.GetDuration("scan.probe_timeout"),
		ResolveNames: a.cfg.GetBool("scan.resolve_names"),
	})
}

// scanTargets resolves the configured probe list: an explicit host list
// wins, then a configured CIDR. With neither set, sweepLocal decides
// whether to expand the auto-detected local /24 or to leave the list
// empty so the cycle probes exactly the roster addresses.
func (a *app) scanTargets(sweepLocal bool) ([]string, error) {
	if hosts := a.cfg.GetStringSlice("scan.hosts"); len(hosts) > 0 {
		return hosts, nil
	}

	subnet := a.cfg.GetString("scan.subnet")
	if subnet == "" {
		if !sweepLocal {
			return nil, nil
		}

		detected, err := ping.LocalSubnet()
		if err != nil {
			return nil, fmt.Errorf("detect local subnet: %w", err)
		}
		subnet = detected
	}

	targets, err := ping.ExpandCIDR(subnet)
	if err != nil {
		return nil, fmt.Errorf("expand scan subnet: %w", err)
	}

	return targets, nil
}

func (a *app) statusProvider(ctx context.Context) (*slack.Client, error) {
	token, err := a.credentials.Get(ctx, slackTokenName)
	if err != nil {
		return nil, fmt.Errorf("load slack token: %w", err)
	}

	return slack.NewClient(a.httpClient, a.cfg.GetString("slack.base_url"), token), nil
}

func (a *app) breakGuard() domain.BreakGuard {
	return domain.NewBreakGuard(a.cfg.GetStringSlice("presence.break_indicators"))
}

func (a *app) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: a.cfg.GetInt("retry.max_attempts"),
		BaseDelay:   a.cfg.GetDuration("retry.base_delay"),
		Multiplier:  a.cfg.GetFloat64("retry.multiplier"),
	}
}

func (a *app) cycle(provider ports.StatusProvider) (*application.Cycle, error) {
	targets, err := a.scanTargets(false)
	if err != nil {
		return nil, err
	}

	presentText := a.cfg.GetString("presence.text")
	reconciler := application.NewReconciler(provider, a.breakGuard(), presentText, nil)
	applier := application.NewApplier(provider, a.retryPolicy(), application.ApplierConfig{
		PresentText:  presentText,
		PresentEmoji: a.cfg.GetString("presence.emoji"),
		Concurrency:  a.cfg.GetInt("apply.concurrency"),
	})

	return application.NewCycle(a.scanner(), a.roster, a.snapshots, reconciler, applier, targets, nil), nil
}

func (a *app) cycleTimeout() time.Duration {
	if timeout := a.cfg.GetDuration("cycle.timeout"); timeout > 0 {
		return timeout
	}

	return defaultCycleLength
}
