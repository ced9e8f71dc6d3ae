package scheduler

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Sportinger/argus/domain/agents"
	"github.com/Sportinger/argus/internal/config"
	"github.com/Sportinger/argus/pkg/logger"
)

// Module provides the scheduler, its run registry, and the background
// pipeline runner, and wires their startup/shutdown into fx.
var Module = fx.Module("scheduler",
	fx.Provide(NewScheduler, NewRunRegistry, NewRunner, NewHandler),
	fx.Invoke(RegisterSchedule, RegisterRoutes),
)

// startupDelay lets the rest of the service finish coming up before the
// first scheduled collection fires.
const startupDelay = 10 * time.Second

// agentSchedule is one row of the fixed (agent name, interval, required
// credential) schedule table.
type agentSchedule struct {
	name        string
	interval    time.Duration
	requiresKey bool
}

// schedules is the fixed schedule table every agent is registered from.
var schedules = []agentSchedule{
	{name: "gdelt", interval: 15 * time.Minute},
	{name: "adsb", interval: 5 * time.Minute},
	{name: "opencorporates", interval: time.Hour},
	{name: "opensanctions", interval: 6 * time.Hour},
	{name: "eu_transparency", interval: 24 * time.Hour},
	{name: "ais", interval: 5 * time.Minute, requiresKey: true},
}

// scheduleParams are the dependencies RegisterSchedule needs.
type scheduleParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Scheduler *Scheduler
	Runner    *Runner
	Registry  agents.Registry
	Cfg       *config.Config
	Log       *slog.Logger
}

// RegisterSchedule registers one interval task per eligible schedule
// entry and starts/stops the underlying cron scheduler with fx's
// lifecycle. After the startup delay, an agent whose required credential
// is missing, or whose name isn't in the registry, is skipped entirely.
func RegisterSchedule(p scheduleParams) {
	log := p.Log.With(logger.Scope("scheduler"))

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				time.Sleep(startupDelay)
				registerEligibleTasks(p, log)
			}()
			return p.Scheduler.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return p.Scheduler.Stop(ctx)
		},
	})
}

func registerEligibleTasks(p scheduleParams, log *slog.Logger) {
	for _, sched := range schedules {
		if sched.requiresKey && p.Cfg.Sources.AISHubAPIKey == "" {
			log.Info("skipping scheduled agent (credential not set)", slog.String("agent", sched.name))
			continue
		}

		if _, ok := p.Registry[sched.name]; !ok {
			log.Warn("scheduled agent not found in registry", slog.String("agent", sched.name))
			continue
		}

		name := sched.name
		err := p.Scheduler.AddIntervalTask(name, sched.interval, func(ctx context.Context) error {
			return p.Runner.RunOnce(ctx, name)
		})
		if err != nil {
			log.Error("failed to schedule agent", slog.String("agent", name), logger.Error(err))
			continue
		}

		log.Info("scheduled agent", slog.String("agent", name), slog.Duration("interval", sched.interval))
	}
}
