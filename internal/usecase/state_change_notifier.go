package usecase

import (
	"context"
	"strconv"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
	"github.com/riskibarqy/esports-match-sync/internal/platform/id"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultNotifyConcurrency = 4

// StateChangeNotifier turns persisted state transitions into notification events.
type StateChangeNotifier struct {
	sink        notification.Sink
	ids         id.Generator
	logger      *logging.Logger
	concurrency int
}

func NewStateChangeNotifier(sink notification.Sink, ids id.Generator, logger *logging.Logger) *StateChangeNotifier {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StateChangeNotifier{
		sink:        sink,
		ids:         ids,
		logger:      logger,
		concurrency: defaultNotifyConcurrency,
	}
}

// Detect compares the previous snapshot with the new one. Matches without a previous state emit
// nothing.
func (n *StateChangeNotifier) Detect(prev, next []match.Match) []notification.Event {
	previous := match.IndexByID(prev)
	out := make([]notification.Event, 0)
	for _, item := range next {
		before, ok := previous[item.ID]
		if !ok {
			continue
		}
		event, ok := DetectTransition(before.State, item)
		if !ok {
			continue
		}
		if eventID, err := n.ids.NewID(); err == nil {
			event.ID = eventID
		} else {
			n.logger.Warn("generate notification id failed", "match_id", item.ID, "error", err)
		}
		out = append(out, event)
	}
	return out
}

// DetectTransition builds the event for a single match, if its transition is one subscribers
// care about.
func DetectTransition(previous match.State, next match.Match) (notification.Event, bool) {
	switch {
	case previous == match.StateUnstarted && next.State == match.StateInProgress:
		return startingEvent(next), true
	case previous == match.StateInProgress && next.State == match.StateCompleted:
		return resultEvent(next), true
	default:
		return notification.Event{}, false
	}
}

// Notify publishes every detected event. Publish failures are logged only.
func (n *StateChangeNotifier) Notify(ctx context.Context, prev, next []match.Match) []notification.Event {
	ctx, span := startUsecaseSpan(ctx, "usecase.StateChangeNotifier.Notify")
	defer span.End()

	events := n.Detect(prev, next)
	span.SetAttributes(attribute.Int("notify.events", len(events)))
	if len(events) == 0 || n.sink == nil {
		return events
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(n.concurrency)
	for _, event := range events {
		event := event
		p.Go(func(ctx context.Context) error {
			if err := n.sink.Publish(ctx, event); err != nil {
				n.logger.WarnContext(ctx, "publish notification failed",
					"match_id", event.MatchID,
					"category", event.Category,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = p.Wait()

	return events
}

func startingEvent(item match.Match) notification.Event {
	a, b := item.Teams[0], item.Teams[1]
	return notification.Event{
		Title:    joinText(a.Code, " x ", b.Code),
		Body:     joinText(a.Name, " e ", b.Name, " começaram a partida. Assista ao vivo!"),
		MatchID:  item.ID,
		Category: notification.CategoryLiveMatch,
	}
}

func resultEvent(item match.Match) notification.Event {
	winner, loser := resolveWinner(item)
	score := strconv.Itoa(winner.Result.GameWins) + "-" + strconv.Itoa(loser.Result.GameWins)
	return notification.Event{
		Title:    joinText(winner.Code, " venceu ", loser.Code),
		Body:     joinText(winner.Code, " ganhou por ", score, " contra ", loser.Code),
		MatchID:  item.ID,
		Category: notification.CategoryResult,
	}
}

// resolveWinner prefers an explicit WIN, then the opponent of a LOSS, then game wins.
func resolveWinner(item match.Match) (match.Team, match.Team) {
	a, b := item.Teams[0], item.Teams[1]
	switch {
	case a.Result.Outcome == match.OutcomeWin:
		return a, b
	case b.Result.Outcome == match.OutcomeWin:
		return b, a
	case a.Result.Outcome == match.OutcomeLoss:
		return b, a
	case b.Result.Outcome == match.OutcomeLoss:
		return a, b
	case b.Result.GameWins > a.Result.GameWins:
		return b, a
	default:
		return a, b
	}
}

func joinText(parts ...string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, part := range parts {
		_, _ = buf.WriteString(part)
	}
	return buf.String()
}
