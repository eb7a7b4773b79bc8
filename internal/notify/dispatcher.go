// Package notify implements the daily reminder dispatch: claim the day's
// un-notified assignments, send one combined message per assignee, and
// release anything that failed so the next run retries it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/enkhbat/rota/internal/model"
	"github.com/enkhbat/rota/internal/push"
	"github.com/enkhbat/rota/internal/rota"
	"github.com/enkhbat/rota/internal/store"
)

// maxConcurrentSends bounds parallel outbound deliveries per run.
const maxConcurrentSends = 4

// Messenger is the chat channel reminders go out on. *telegram.Client
// satisfies it.
type Messenger interface {
	Enabled() bool
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Result is the aggregate outcome of one dispatch run. Counts are per
// assignment, not per message.
type Result struct {
	Notified int `json:"notified"`
	Failures int `json:"failures"`
}

// Dispatcher coordinates daily reminder delivery. Safe to invoke from
// concurrent cron triggers: each run claims its own disjoint set of
// assignments before sending anything.
type Dispatcher struct {
	assignments *store.AssignmentStore
	duties      *store.DutyStore
	members     *store.MemberStore

	chat    Messenger
	pushSvc *push.Service
	pushes  *store.PushStore

	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

func NewDispatcher(
	assignments *store.AssignmentStore,
	duties *store.DutyStore,
	members *store.MemberStore,
	chat Messenger,
	pushSvc *push.Service,
	pushes *store.PushStore,
	baseURL string,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		assignments: assignments,
		duties:      duties,
		members:     members,
		chat:        chat,
		pushSvc:     pushSvc,
		pushes:      pushes,
		baseURL:     baseURL,
		logger:      logger,
		now:         time.Now,
	}
}

// DispatchDaily sends the day's reminders. It first claims every assignment
// on date still awaiting notification, then groups the claimed set by
// assignee and sends one combined message each. A failed delivery releases
// that assignee's claims for the next run; assignees with no linked chat are
// skipped silently. One assignee's failure never aborts the others.
func (d *Dispatcher) DispatchDaily(ctx context.Context, date rota.Date) (Result, error) {
	token := uuid.NewString()

	claimedCount, err := d.assignments.Claim(date.String(), token, d.now())
	if err != nil {
		return Result{}, err
	}
	if claimedCount == 0 {
		return Result{}, nil
	}

	claimed, err := d.assignments.ListClaimed(token)
	if err != nil {
		// Leave nothing stranded in the claimed state.
		if relErr := d.assignments.ReleaseRun(token); relErr != nil {
			d.logger.Error("release run after failure", "error", relErr)
		}
		return Result{}, err
	}

	labels, err := d.dutyLabels()
	if err != nil {
		if relErr := d.assignments.ReleaseRun(token); relErr != nil {
			d.logger.Error("release run after failure", "error", relErr)
		}
		return Result{}, err
	}

	memberByID, err := d.memberIndex()
	if err != nil {
		if relErr := d.assignments.ReleaseRun(token); relErr != nil {
			d.logger.Error("release run after failure", "error", relErr)
		}
		return Result{}, err
	}

	byAssignee := make(map[int64][]model.Assignment)
	for _, a := range claimed {
		byAssignee[a.AssignedMemberID] = append(byAssignee[a.AssignedMemberID], a)
	}

	var mu sync.Mutex
	var result Result

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSends)

	for memberID, batch := range byAssignee {
		g.Go(func() error {
			n, failed := d.notifyAssignee(ctx, token, date, memberID, memberByID[memberID], batch, labels)
			mu.Lock()
			result.Notified += n
			result.Failures += failed
			mu.Unlock()
			// Per-assignee failures are accounted, never propagated: one
			// unreachable member must not cancel the rest of the run.
			return nil
		})
	}
	_ = g.Wait()

	d.logger.Info("dispatch finished",
		"date", date.String(), "claimed", claimedCount,
		"notified", result.Notified, "failures", result.Failures)
	return result, nil
}

// notifyAssignee delivers one member's combined reminder. Returns how many
// assignments were notified and how many go back into the retry pool.
func (d *Dispatcher) notifyAssignee(
	ctx context.Context,
	token string,
	date rota.Date,
	memberID int64,
	member *model.Member,
	batch []model.Assignment,
	labels map[string]string,
) (notified, failed int) {
	if member == nil {
		// Assignee no longer exists; nothing to deliver and nothing to
		// retry toward.
		d.logger.Warn("assignee missing", "member_id", memberID, "date", date.String())
		return 0, 0
	}

	text := d.composeMessage(date, batch, labels)

	if d.chat != nil && d.chat.Enabled() && member.Linked() {
		if err := d.chat.SendMessage(ctx, *member.TelegramChatID, text); err != nil {
			d.logger.Warn("reminder delivery failed",
				"member", member.Name, "date", date.String(), "error", err)
			if _, relErr := d.assignments.ReleaseClaim(token, memberID); relErr != nil {
				d.logger.Error("release claim", "member_id", memberID, "error", relErr)
			}
			return 0, len(batch)
		}
		notified = len(batch)
	}
	// No linked chat: silently skipped, not counted as a failure — there is
	// nothing to retry toward.

	d.mirrorToPush(member, date, batch, labels)
	return notified, 0
}

// mirrorToPush sends the same reminder to the member's web-push
// subscriptions. Best effort only: push failures are logged, never retried,
// and never affect the claim state.
func (d *Dispatcher) mirrorToPush(member *model.Member, date rota.Date, batch []model.Assignment, labels map[string]string) {
	if d.pushSvc == nil || d.pushes == nil {
		return
	}

	subs, err := d.pushes.ListByMember(member.ID)
	if err != nil {
		d.logger.Error("list push subscriptions", "member_id", member.ID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	var body []string
	for _, a := range batch {
		body = append(body, labelFor(labels, a.DutyKey))
	}
	payload := push.Payload{
		Title: fmt.Sprintf("Duties for %s", date.String()),
		Body:  strings.Join(body, ", "),
		URL:   "/dashboard",
		Tag:   "duty-daily",
	}

	for _, sub := range subs {
		if err := d.pushSvc.Send(&sub, payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				if delErr := d.pushes.DeleteByEndpoint(sub.Endpoint); delErr != nil {
					d.logger.Error("prune subscription", "error", delErr)
				}
				continue
			}
			d.logger.Warn("push mirror failed", "member_id", member.ID, "error", err)
		}
	}
}

func (d *Dispatcher) composeMessage(date rota.Date, batch []model.Assignment, labels map[string]string) string {
	sort.Slice(batch, func(i, j int) bool { return batch[i].DutyKey < batch[j].DutyKey })

	var b strings.Builder
	fmt.Fprintf(&b, "🏠 Household duties for %s\n", date.String())
	for _, a := range batch {
		fmt.Fprintf(&b, "• %s\n", labelFor(labels, a.DutyKey))
	}
	fmt.Fprintf(&b, "\nOpen: %s/dashboard", d.baseURL)
	return b.String()
}

func (d *Dispatcher) dutyLabels() (map[string]string, error) {
	duties, err := d.duties.ListActive()
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(duties))
	for _, duty := range duties {
		labels[duty.Key] = duty.Label
	}
	return labels, nil
}

func (d *Dispatcher) memberIndex() (map[int64]*model.Member, error) {
	members, err := d.members.List()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Member, len(members))
	for i := range members {
		byID[members[i].ID] = &members[i]
	}
	return byID, nil
}

func labelFor(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}
