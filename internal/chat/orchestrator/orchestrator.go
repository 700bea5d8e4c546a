// internal/chat/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"time"

	"chatfood-service/internal/chat/menu"
	"chatfood-service/internal/chat/session"
	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/common/metrics"
	"chatfood-service/internal/common/observability"
	"chatfood-service/internal/models"
	"chatfood-service/internal/profile"
)

const (
	// InitSentinel routes a chat message into the initial flow.
	InitSentinel = "__INIT__"

	openingPrompt = "Hello! What shall we have for lunch today?"

	errorReply = "Sorry, something went wrong. Please try again in a moment."
)

// Generative produces the assistant reply. The string is always
// display-ready; the error carries the failure classification.
type Generative interface {
	Reply(ctx context.Context, message, profileSummary string, history []models.Turn) (string, error)
}

// Recommender produces the personalization list. It never fails; absence of
// data degrades to a default list.
type Recommender interface {
	Recommend(ctx context.Context, p *models.UserProfile) []models.Recommendation
}

type Config struct {
	HistoryWindow int
}

// Orchestrator coordinates one conversation turn across the session store,
// the profile source and both providers. Turns for the same session key are
// serialized; distinct sessions proceed fully in parallel.
type Orchestrator struct {
	config      *Config
	store       session.Store
	locks       *session.KeyedLock
	generative  Generative
	recommender Recommender
	profiles    profile.Source
	extractor   menu.Extractor
	obs         *observability.Observability
	logger      logger.Logger
}

func New(cfg *Config, store session.Store, generative Generative, recommender Recommender,
	profiles profile.Source, extractor menu.Extractor, obs *observability.Observability, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		config:      cfg,
		store:       store,
		locks:       session.NewKeyedLock(),
		generative:  generative,
		recommender: recommender,
		profiles:    profiles,
		extractor:   extractor,
		obs:         obs,
		logger: log.With(map[string]interface{}{
			"component": "orchestrator",
		}),
	}
}

// ProcessTurn handles one user message. The sentinel message routes to the
// initial flow; everything else is a follow-up turn.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionKey, userID, message string) *models.TurnResult {
	if message == InitSentinel {
		return o.InitialRecommendations(ctx, sessionKey, userID)
	}

	start := time.Now()
	result := o.lockedTurn(ctx, sessionKey, func(sc *session.Context) *models.TurnResult {
		return o.followUpTurn(ctx, sc, userID, message)
	})
	o.record(ctx, result.ConversationType, time.Since(start))
	return result
}

// InitialRecommendations produces the opening reply plus both recommendation
// channels: the conversational echo list and the personalization list.
func (o *Orchestrator) InitialRecommendations(ctx context.Context, sessionKey, userID string) *models.TurnResult {
	start := time.Now()
	result := o.lockedTurn(ctx, sessionKey, func(sc *session.Context) *models.TurnResult {
		return o.initialTurn(ctx, sc, userID)
	})
	o.record(ctx, result.ConversationType, time.Since(start))
	return result
}

// Reset clears the session's history and recommendation state. Only an
// explicit restart reaches this; no turn flow ever resets a context.
func (o *Orchestrator) Reset(ctx context.Context, sessionKey string) error {
	o.locks.Lock(sessionKey)
	defer o.locks.Unlock(sessionKey)

	sc, err := o.store.GetOrCreate(ctx, sessionKey, "")
	if err != nil {
		return err
	}
	sc.Reset()
	return o.store.Save(ctx, sc)
}

// lockedTurn runs one whole turn under the per-session lock with the
// orchestrator-boundary recovery: any failure or panic degrades to the fixed
// error result instead of propagating.
func (o *Orchestrator) lockedTurn(ctx context.Context, sessionKey string, turn func(*session.Context) *models.TurnResult) (result *models.TurnResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("turn panicked", map[string]interface{}{
				"sessionKey": sessionKey,
				"panic":      r,
			})
			result = errorResult()
		}
	}()

	o.locks.Lock(sessionKey)
	defer o.locks.Unlock(sessionKey)

	sc, err := o.store.GetOrCreate(ctx, sessionKey, "")
	if err != nil {
		o.logger.WithError(err).Error("load session failed", map[string]interface{}{
			"sessionKey": sessionKey,
		})
		return errorResult()
	}
	return turn(sc)
}

func (o *Orchestrator) initialTurn(ctx context.Context, sc *session.Context, userID string) *models.TurnResult {
	if userID != "" && sc.UserID == "" {
		sc.UserID = userID
	}

	p := o.lookupProfile(ctx, userID)
	personal := o.recommender.Recommend(ctx, p)

	reply, err := o.generative.Reply(ctx, openingPrompt, profile.Summary(p), nil)

	var echo []models.Recommendation
	if err == nil {
		echo = menu.ToRecommendations(o.extractor.Extract(ctx, reply))
	} else {
		o.logger.WithError(err).Warn("opening line unavailable", map[string]interface{}{
			"sessionKey": sc.SessionID,
		})
	}

	sc.HasRecommendations = true
	sc.LastRecommendations = echo
	if serr := o.store.Save(ctx, sc); serr != nil {
		o.logger.WithError(serr).Error("save session failed", map[string]interface{}{
			"sessionKey": sc.SessionID,
		})
	}

	return &models.TurnResult{
		Reply:                   reply,
		Recommendations:         echo,
		PersonalRecommendations: personal,
		Options: []models.Option{
			{Text: "Start chatting", Action: "start_conversation", Value: "Start chatting", Type: models.OptionTypeConversation},
			{Text: "Show other dishes", Action: "more_recommendations", Value: "Show other dishes", Type: models.OptionTypeContinue},
		},
		ConversationType: models.ConversationTypeInitial,
		NextAction:       models.NextActionContinue,
	}
}

func (o *Orchestrator) followUpTurn(ctx context.Context, sc *session.Context, userID, message string) *models.TurnResult {
	if userID != "" && sc.UserID == "" {
		sc.UserID = userID
	}

	history := sc.RecentTurns(o.config.HistoryWindow)
	sc.AppendTurn(models.SpeakerUser, message)

	p := o.lookupProfile(ctx, userID)
	reply, err := o.generative.Reply(ctx, message, profile.Summary(p), history)

	// A classified provider failure is still a valid reply to the user; it
	// just carries no dishes to extract.
	var recs []models.Recommendation
	if err == nil {
		recs = menu.ToRecommendations(o.extractor.Extract(ctx, reply))
		sc.HasRecommendations = true
		sc.LastRecommendations = recs
	} else {
		o.logger.WithError(err).Warn("generative provider failed", map[string]interface{}{
			"sessionKey": sc.SessionID,
		})
	}

	sc.AppendTurn(models.SpeakerAssistant, reply)
	if serr := o.store.Save(ctx, sc); serr != nil {
		o.logger.WithError(serr).Error("save session failed", map[string]interface{}{
			"sessionKey": sc.SessionID,
		})
	}

	return &models.TurnResult{
		Reply:           reply,
		Recommendations: recs,
		Options: []models.Option{
			{Text: "Recommend other dishes", Action: models.NextActionContinue, Value: "Recommend other dishes", Type: models.OptionTypeContinue},
			{Text: "Keep chatting", Action: models.NextActionContinue, Value: "Keep chatting", Type: models.OptionTypeContinue},
		},
		ConversationType: models.ConversationTypeChat,
		NextAction:       models.NextActionContinue,
	}
}

// lookupProfile degrades to an unknown user on any failure.
func (o *Orchestrator) lookupProfile(ctx context.Context, userID string) *models.UserProfile {
	if userID == "" {
		return nil
	}
	p, err := o.profiles.FindByEmail(ctx, userID)
	if err != nil {
		o.logger.WithError(err).Warn("profile lookup failed, treating user as unregistered", map[string]interface{}{
			"userId": userID,
		})
		return nil
	}
	return p
}

func (o *Orchestrator) record(ctx context.Context, conversationType string, elapsed time.Duration) {
	metrics.ConversationTurns.WithLabelValues(conversationType).Inc()
	metrics.TurnDuration.WithLabelValues(conversationType).Observe(elapsed.Seconds())
	if o.obs != nil {
		o.obs.RecordTurn(ctx, conversationType)
		o.obs.RecordTurnDuration(ctx, elapsed, conversationType)
	}
}

func errorResult() *models.TurnResult {
	return &models.TurnResult{
		Reply:            errorReply,
		ConversationType: models.ConversationTypeError,
	}
}
