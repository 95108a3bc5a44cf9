package router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/matcher"
	"github.com/MrSnakeDoc/revisit/internal/notify"
	"github.com/MrSnakeDoc/revisit/internal/recorder"
	"github.com/MrSnakeDoc/revisit/internal/scheduler"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

// Handlers wires every message type to the components behind it.
type Handlers struct {
	Store      store.Store
	Matcher    *matcher.Matcher
	Recorder   *recorder.Recorder
	Scheduler  *scheduler.ReminderScheduler
	Dispatcher *notify.Dispatcher
	Logger     logger.Logger

	// OpenPopup asks connected frontends to open the popup surface.
	OpenPopup func()

	// Now is injectable for tests; defaults to time.Now via RegisterAll.
	Now func() time.Time
}

// RegisterAll binds the full message enumeration on the router.
func (h *Handlers) RegisterAll(r *Router) {
	if h.Now == nil {
		h.Now = time.Now
	}

	r.Register(domain.MsgGetSites, h.getSites)
	r.Register(domain.MsgSaveSite, h.saveSite)
	r.Register(domain.MsgUpdateSite, h.updateSite)
	r.Register(domain.MsgDeleteSite, h.deleteSite)
	r.Register(domain.MsgMarkVisited, h.markVisited)
	r.Register(domain.MsgMarkCheckedIn, h.markCheckedIn)
	r.Register(domain.MsgSiteVisited, h.siteVisited)
	r.Register(domain.MsgCheckURLMatch, h.checkURLMatch)
	r.Register(domain.MsgGetSettings, h.getSettings)
	r.Register(domain.MsgUpdateSettings, h.updateSettings)
	r.Register(domain.MsgClearAllSites, h.clearAllSites)
	r.Register(domain.MsgResetAllStatus, h.resetAllStatus)
	r.Register(domain.MsgNotificationAction, h.notificationAction)
	r.Register(domain.MsgOpenPopup, h.openPopup)
}

// ─────────────────────────────────────────────────────────────────
// Payload shapes
// ─────────────────────────────────────────────────────────────────

type savePayload struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Favicon string   `json:"favicon"`
	Notes   string   `json:"notes"`
	Tags    []string `json:"tags"`
}

type updatePayload struct {
	ID      string    `json:"id"`
	URL     *string   `json:"url"`
	Title   *string   `json:"title"`
	Favicon *string   `json:"favicon"`
	Notes   *string   `json:"notes"`
	Tags    *[]string `json:"tags"`
}

type idPayload struct {
	ID string `json:"id"`
}

type urlPayload struct {
	URL string `json:"url"`
}

type visitPayload struct {
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Timestamp *time.Time `json:"timestamp"`
}

type actionPayload struct {
	NotificationID string `json:"notificationId"`
	ButtonIndex    int    `json:"buttonIndex"`
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return &domain.ValidationError{Field: "payload", Reason: "missing"}
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &domain.ValidationError{Field: "payload", Reason: "malformed"}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────

func (h *Handlers) getSites(ctx context.Context, _ json.RawMessage) (any, error) {
	return h.Store.GetSites(ctx)
}

func (h *Handlers) saveSite(ctx context.Context, payload json.RawMessage) (any, error) {
	var p savePayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}

	site, err := domain.NewSite(p.URL, p.Title, h.Now())
	if err != nil {
		return nil, err
	}
	site.Favicon = p.Favicon
	site.Notes = p.Notes
	site.Tags = p.Tags

	if err := h.Store.SaveSite(ctx, site); err != nil {
		return nil, err
	}

	h.Logger.Info("site saved",
		logger.String("site_id", site.ID),
		logger.String("url", site.URL))
	return site, nil
}

func (h *Handlers) updateSite(ctx context.Context, payload json.RawMessage) (any, error) {
	var p updatePayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "missing"}
	}

	site, err := h.Store.GetSite(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.URL != nil {
		normalized, err := domain.NormalizeURL(*p.URL)
		if err != nil {
			return nil, err
		}
		site.URL = normalized
	}
	if p.Title != nil {
		site.Title = *p.Title
	}
	if p.Favicon != nil {
		site.Favicon = *p.Favicon
	}
	if p.Notes != nil {
		site.Notes = *p.Notes
	}
	if p.Tags != nil {
		site.Tags = *p.Tags
	}

	if err := h.Store.SaveSite(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (h *Handlers) deleteSite(ctx context.Context, payload json.RawMessage) (any, error) {
	var p idPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	// Idempotent: deleting a missing id is not an error.
	if err := h.Store.DeleteSite(ctx, p.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *Handlers) markVisited(ctx context.Context, payload json.RawMessage) (any, error) {
	var p idPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return h.Recorder.RecordVisit(ctx, p.ID, h.Now())
}

func (h *Handlers) markCheckedIn(ctx context.Context, payload json.RawMessage) (any, error) {
	var p idPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return h.Recorder.CheckIn(ctx, p.ID, h.Now())
}

func (h *Handlers) siteVisited(ctx context.Context, payload json.RawMessage) (any, error) {
	var p visitPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}

	at := h.Now()
	if p.Timestamp != nil {
		at = *p.Timestamp
	}

	site, err := h.Recorder.RecordAutoVisit(ctx, p.URL, at)
	if err != nil {
		return nil, err
	}
	if site == nil {
		// The site vanished between the caller's match check and this
		// write. Null data, not an error.
		return nil, nil
	}
	return site, nil
}

func (h *Handlers) checkURLMatch(ctx context.Context, payload json.RawMessage) (any, error) {
	var p urlPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return h.Matcher.Match(ctx, p.URL, h.Now())
}

func (h *Handlers) getSettings(ctx context.Context, _ json.RawMessage) (any, error) {
	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		// Singleton materialized with defaults on first access.
		settings = domain.DefaultSettings()
		if err := h.Store.SaveSettings(ctx, settings); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

func (h *Handlers) updateSettings(ctx context.Context, payload json.RawMessage) (any, error) {
	var patch domain.SettingsPatch
	if err := decode(payload, &patch); err != nil {
		return nil, err
	}

	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = domain.DefaultSettings()
	}

	reminderChanged, err := settings.Apply(patch)
	if err != nil {
		return nil, err
	}
	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	if reminderChanged {
		// Side effect, not part of the caller's contract: a failed
		// re-derivation is logged, the merged settings still return.
		if err := h.Scheduler.Reconcile(ctx); err != nil {
			h.Logger.Error("failed to reconcile reminder alarms", logger.Error(err))
		}
	}
	return settings, nil
}

func (h *Handlers) clearAllSites(ctx context.Context, _ json.RawMessage) (any, error) {
	if err := h.Store.ClearSites(ctx); err != nil {
		return nil, err
	}
	h.Logger.Info("site collection cleared")
	return nil, nil
}

func (h *Handlers) resetAllStatus(ctx context.Context, _ json.RawMessage) (any, error) {
	return h.Recorder.ResetAll(ctx)
}

func (h *Handlers) notificationAction(ctx context.Context, payload json.RawMessage) (any, error) {
	var p actionPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return h.Dispatcher.HandleAction(ctx, p.NotificationID, p.ButtonIndex)
}

func (h *Handlers) openPopup(ctx context.Context, _ json.RawMessage) (any, error) {
	if h.OpenPopup != nil {
		h.OpenPopup()
	}
	return nil, nil
}
