// Package orchestrator runs one customer turn end to end: session load,
// routing, fact gathering, strategy rendering, session persistence and
// the external hand-offs.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	apperrors "storeassist/internal/common/errors"
	"storeassist/internal/common/logger"
	"storeassist/internal/common/metrics"
	"storeassist/internal/connectors/notifier"
	"storeassist/internal/crm"
	"storeassist/internal/models"
	"storeassist/internal/router"
	"storeassist/internal/session"
	"storeassist/internal/strategy"
)

// TurnRecorder receives the finished turn for CRM purposes.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, tenant, sessionID, phone string, e crm.ConversationEntry)
}

// TurnLogger receives the finished turn for analytics purposes.
type TurnLogger interface {
	LogTurn(ctx context.Context, tenant, sessionID, channel, intent, mode string, ok bool, latency time.Duration)
}

// HandoffNotifier alerts an operator when a customer asks for a human.
type HandoffNotifier interface {
	NotifyHandoff(ctx context.Context, req notifier.HandoffRequest)
}

// Config is the orchestrator's behavior knobs, derived from the
// assistant section of the service configuration.
type Config struct {
	DefaultMode  string
	ModeByTenant map[string]string
	SessionTTL   time.Duration
}

// Orchestrator owns the per-tenant pipelines and the shared strategies.
type Orchestrator struct {
	cfg        Config
	opts       strategy.Options
	tenants    map[string]*Tenant
	strategies map[string]strategy.Strategy
	sessions   session.Store
	recorder   TurnRecorder
	turnLog    TurnLogger
	notifier   HandoffNotifier
	log        logger.Logger
}

// Option wires an optional collaborator.
type Option func(*Orchestrator)

func WithRecorder(r TurnRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

func WithTurnLogger(l TurnLogger) Option {
	return func(o *Orchestrator) { o.turnLog = l }
}

func WithNotifier(n HandoffNotifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func New(cfg Config, tenants map[string]*Tenant, sessions session.Store, opts strategy.Options, log logger.Logger, options ...Option) *Orchestrator {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = strategy.ModeFlagship
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	o := &Orchestrator{
		cfg:     cfg,
		opts:    opts,
		tenants: tenants,
		strategies: map[string]strategy.Strategy{
			strategy.ModeDeterministic: strategy.NewDeterministic(opts),
			strategy.ModeHybrid:        strategy.NewHybrid(opts),
			strategy.ModeFlagship:      strategy.NewFlagship(opts),
		},
		sessions: sessions,
		log:      log,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Handle processes one turn. The only hard failures are an unknown
// tenant and malformed input; everything downstream degrades to a
// clarifier or a safe draft instead of erroring.
func (o *Orchestrator) Handle(ctx context.Context, req models.TurnRequest) (models.TurnResponse, error) {
	start := time.Now()

	if req.Text == "" || req.SessionID == "" || req.Tenant == "" {
		return models.TurnResponse{}, apperrors.NewMalformedInputError("text, sessionId and tenant are required")
	}
	tenant, ok := o.tenants[req.Tenant]
	if !ok {
		return models.TurnResponse{}, apperrors.NewMalformedInputError(fmt.Sprintf("unknown tenant %q", req.Tenant))
	}

	mode := o.modeFor(req.Tenant)
	strat := o.strategies[mode]
	sess := session.Snapshot(ctx, o.sessions, req.SessionID)

	route := tenant.Router.Route(req.Text, router.Context{
		Tenant:           req.Tenant,
		Channel:          req.Channel,
		Session:          sess,
		CoveragePrefixes: tenant.Geo.CoveragePrefixes(),
	})
	route = o.downgradeClarifierLoop(route)

	var reply string
	var bundle models.FactBundle

	switch {
	case route.NeedsClarification:
		metrics.ClarifiersTotal.WithLabelValues(req.Tenant, route.Intent.String()).Inc()
		reply = route.Clarifier

	default:
		bundle, route = o.gather(ctx, tenant, strat, mode, route, sess, req.Text)
		if route.NeedsClarification {
			metrics.ClarifiersTotal.WithLabelValues(req.Tenant, route.Intent.String()).Inc()
			reply = route.Clarifier
		} else {
			sctx := strategy.Context{
				Intent:   route.Intent,
				Entities: route.Entities,
				Session:  sess,
				Facts:    bundle,
			}
			draft := strategy.ComposeDraft(sctx, route.Clarifier)
			reply = o.rewrite(strat, mode, req.Tenant, draft, sctx)
		}
	}

	o.persistSession(ctx, req.SessionID, route, bundle)
	o.handOff(ctx, req, route, mode, reply, start)

	metrics.TurnsTotal.WithLabelValues(req.Tenant, string(req.Channel), mode, route.Intent.String()).Inc()
	metrics.TurnDuration.WithLabelValues(req.Tenant, mode).Observe(time.Since(start).Seconds())

	return models.TurnResponse{
		Reply:    reply,
		Mode:     mode,
		Intent:   route.Intent.String(),
		Entities: route.Entities.ToMap(),
		Facts:    bundle.ToMap(),
	}, nil
}

func (o *Orchestrator) modeFor(tenant string) string {
	if m, ok := o.cfg.ModeByTenant[tenant]; ok && m != "" {
		return m
	}
	return o.cfg.DefaultMode
}

// downgradeClarifierLoop stops the router from asking "which category?"
// forever: for product intents the raw utterance becomes the search
// query instead of a clarifier.
func (o *Orchestrator) downgradeClarifierLoop(route models.Route) models.Route {
	if !route.NeedsClarification {
		return route
	}
	if route.Intent != models.IntentSearchProduct && route.Intent != models.IntentBrowseCategory {
		return route
	}
	ent := route.Entities
	if ent.Query == "" {
		ent.Query = route.Utterance
	}
	return models.Route{
		Intent:    route.Intent,
		Entities:  ent,
		Utterance: route.Utterance,
	}
}

// gather runs the mode's fact acquisition. Flagship executes its own
// plan; the other modes go straight through the gatherer. A required
// tool failing downgrades the route to a clarification.
func (o *Orchestrator) gather(ctx context.Context, tenant *Tenant, strat strategy.Strategy, mode string, route models.Route, sess models.SessionSnapshot, userText string) (models.FactBundle, models.Route) {
	if mode != strategy.ModeFlagship {
		return tenant.Gatherer.Gather(ctx, route, sess), route
	}

	plan := strat.Plan(userText, strategy.Context{
		Intent:   route.Intent,
		Entities: route.Entities,
		Session:  sess,
	})
	if plan.NeedsClarification() {
		clarified := route
		clarified.NeedsClarification = true
		if clarified.Clarifier == "" {
			clarified.Clarifier = o.opts.ClarifierFor(route.Intent)
		}
		return models.FactBundle{}, clarified
	}

	bundle, err := tenant.Gatherer.Execute(ctx, plan, route, sess)
	if err != nil {
		o.log.Warn("plan execution failed, clarifying", map[string]interface{}{
			"tenant": tenant.Name,
			"intent": route.Intent.String(),
			"error":  err.Error(),
		})
		clarified := route
		clarified.NeedsClarification = true
		clarified.Clarifier = o.opts.ClarifierFor(route.Intent)
		return models.FactBundle{}, clarified
	}
	return bundle, route
}

// rewrite calls the strategy with panic capture. A strategy bug must not
// abort the turn: the safe minimal draft goes out instead.
func (o *Orchestrator) rewrite(strat strategy.Strategy, mode, tenant, draft string, sctx strategy.Context) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RenderFallbacks.WithLabelValues(tenant, mode).Inc()
			o.log.Error("strategy rewrite panicked, using safe draft", map[string]interface{}{
				"tenant": tenant,
				"mode":   mode,
				"panic":  fmt.Sprint(r),
			})
			reply = strategy.SafeMinimalRewrite(draft)
		}
	}()
	return strat.Rewrite(draft, sctx)
}

// persistSession writes the turn deltas. Failures are logged; a session
// write never fails the turn.
func (o *Orchestrator) persistSession(ctx context.Context, sessionID string, route models.Route, bundle models.FactBundle) {
	set := func(key, value string) {
		if value == "" {
			return
		}
		if err := o.sessions.Set(ctx, sessionID, key, value, o.cfg.SessionTTL); err != nil {
			o.log.Warn("session write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	set(session.KeyLastIntent, route.Intent.String())
	set(session.KeyPostcode, route.Entities.Postcode)
	set(session.KeyLastCategory, route.Entities.Category)
	set(session.KeyLastSKU, route.Entities.SKU)
	if bundle.Branch != nil && !bundle.Branch.Nearest.LowConfidence {
		set(session.KeyNearestBranchID, bundle.Branch.Nearest.ID)
	}
}

// handOff forwards the finished turn to CRM, analytics and, for handoff
// intents, the operator notifier. All fire-and-forget.
func (o *Orchestrator) handOff(ctx context.Context, req models.TurnRequest, route models.Route, mode, reply string, start time.Time) {
	if o.recorder != nil {
		o.recorder.RecordTurn(ctx, req.Tenant, req.SessionID, route.Entities.Phone, crm.ConversationEntry{
			UserText: req.Text,
			Reply:    reply,
			Intent:   route.Intent.String(),
			Mode:     mode,
		})
	}
	if o.turnLog != nil {
		o.turnLog.LogTurn(ctx, req.Tenant, req.SessionID, string(req.Channel), route.Intent.String(), mode, true, time.Since(start))
	}
	if o.notifier != nil && route.Intent == models.IntentHumanHandoff {
		o.notifier.NotifyHandoff(ctx, notifier.HandoffRequest{
			Tenant:    req.Tenant,
			SessionID: req.SessionID,
			UserText:  req.Text,
			Phone:     route.Entities.Phone,
		})
	}
}
