package server

import (
	"context"
	"testing"

	"dealtracker/internal/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type nopLogger struct{}

func (nopLogger) Trace(v ...any)                 {}
func (nopLogger) Debug(v ...any)                 {}
func (nopLogger) Info(v ...any)                  {}
func (nopLogger) Error(v ...any)                 {}
func (nopLogger) Tracef(format string, v ...any) {}
func (nopLogger) Debugf(format string, v ...any) {}
func (nopLogger) Infof(format string, v ...any)  {}
func (nopLogger) Errorf(format string, v ...any) {}

type fakeStore struct {
	items     []model.TrackedItem
	states    map[string]model.NotificationState
	users     map[string]model.User
	upsertErr error
}

func stateKey(userID primitive.ObjectID, platform model.Platform, identifier string) string {
	return userID.Hex() + "/" + string(platform) + "/" + identifier
}

func (s *fakeStore) TrackedItemsFindAll(ctx context.Context) ([]model.TrackedItem, error) {
	return s.items, nil
}

func (s *fakeStore) NotificationStateFind(
	ctx context.Context, userID primitive.ObjectID, platform model.Platform, identifier string,
) (model.NotificationState, error) {
	ns, ok := s.states[stateKey(userID, platform, identifier)]
	if !ok {
		return model.NotificationState{}, errors.Wrap(mongo.ErrNoDocuments, "no NotificationState")
	}
	return ns, nil
}

func (s *fakeStore) NotificationStateUpsert(ctx context.Context, ns model.NotificationState) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if s.states == nil {
		s.states = map[string]model.NotificationState{}
	}
	s.states[stateKey(ns.UserID, ns.Platform, ns.Identifier)] = ns
	return nil
}

func (s *fakeStore) UserFindByID(ctx context.Context, id string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, errors.Errorf("no User with ID: %s", id)
	}
	return u, nil
}

type fakeSource struct {
	snapshots map[string]model.PriceSnapshot
	errs      map[string]error
	fetches   []string
}

func (s *fakeSource) SteamGetApp(appID string, useCache bool) (model.PriceSnapshot, error) {
	s.fetches = append(s.fetches, appID)
	if err := s.errs[appID]; err != nil {
		return model.PriceSnapshot{}, err
	}
	return s.snapshots[appID], nil
}

type sentAlert struct {
	userID primitive.ObjectID
	appID  string
	reason alertReason
}

type fakeNotifier struct {
	sent    []sentAlert
	sendErr error
}

func (n *fakeNotifier) SendPriceAlert(
	u model.User, ti model.TrackedItem, current model.PriceSnapshot, last *model.NotificationState, reason alertReason,
) error {
	n.sent = append(n.sent, sentAlert{userID: u.ID, appID: ti.Identifier, reason: reason})
	return n.sendErr
}

func trackedSteamItem(userID primitive.ObjectID, appID string) model.TrackedItem {
	return model.TrackedItem{
		UserID:     userID,
		Platform:   model.PlatformSteam,
		Identifier: appID,
		Title:      "App " + appID,
	}
}

func newTestPoller(store *fakeStore, source *fakeSource, notifier *fakeNotifier) Poller {
	if store.users == nil {
		store.users = map[string]model.User{}
	}
	for _, ti := range store.items {
		store.users[ti.UserID.Hex()] = model.User{ID: ti.UserID, Name: "tester"}
	}
	return Poller{DB: store, Source: source, Notifier: notifier, Logger: nopLogger{}}
}

func TestCheckPricesNotifiesOnFirstDiscount(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeStore{items: []model.TrackedItem{trackedSteamItem(userID, "400")}}
	source := &fakeSource{snapshots: map[string]model.PriceSnapshot{
		"400": {Platform: model.PlatformSteam, Identifier: "400", Name: "Portal", DiscountPercent: 10, FinalPrice: 900, OriginalPrice: 1000},
	}}
	notifier := &fakeNotifier{}
	p := newTestPoller(store, source, notifier)

	p.checkPrices(context.Background())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, reasonDiscountDetected, notifier.sent[0].reason)
	ns := store.states[stateKey(userID, model.PlatformSteam, "400")]
	assert.Equal(t, 10, ns.LastDiscountPercent)
	assert.Equal(t, 900, ns.LastPrice)
}

func TestCheckPricesAcrossCycles(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeStore{items: []model.TrackedItem{trackedSteamItem(userID, "400")}}
	source := &fakeSource{snapshots: map[string]model.PriceSnapshot{
		"400": {Platform: model.PlatformSteam, Identifier: "400", DiscountPercent: 10, FinalPrice: 900, OriginalPrice: 1000},
	}}
	notifier := &fakeNotifier{}
	p := newTestPoller(store, source, notifier)

	// First cycle alerts on the new discount.
	p.checkPrices(context.Background())
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, reasonDiscountDetected, notifier.sent[0].reason)

	// Same snapshot again, nothing new to tell.
	p.checkPrices(context.Background())
	assert.Len(t, notifier.sent, 1)

	// The discount deepens.
	source.snapshots["400"] = model.PriceSnapshot{
		Platform: model.PlatformSteam, Identifier: "400", DiscountPercent: 25, FinalPrice: 750, OriginalPrice: 1000,
	}
	p.checkPrices(context.Background())
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, reasonDiscountChanged, notifier.sent[1].reason)
}

func TestCheckPricesBootstrapsWithoutAlert(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeStore{items: []model.TrackedItem{trackedSteamItem(userID, "400")}}
	source := &fakeSource{snapshots: map[string]model.PriceSnapshot{
		"400": {Platform: model.PlatformSteam, Identifier: "400", FinalPrice: 1000, OriginalPrice: 1000},
	}}
	notifier := &fakeNotifier{}
	p := newTestPoller(store, source, notifier)

	p.checkPrices(context.Background())

	assert.Empty(t, notifier.sent)
	ns, ok := store.states[stateKey(userID, model.PlatformSteam, "400")]
	require.True(t, ok, "baseline should be recorded on first observation")
	assert.Equal(t, 0, ns.LastDiscountPercent)
	assert.Equal(t, 1000, ns.LastPrice)
}

func TestCheckPricesOneFailureDoesNotAffectOthers(t *testing.T) {
	userID := primitive.NewObjectID()
	var items []model.TrackedItem
	snapshots := map[string]model.PriceSnapshot{}
	for _, appID := range []string{"10", "20", "30", "40", "50"} {
		items = append(items, trackedSteamItem(userID, appID))
		snapshots[appID] = model.PriceSnapshot{
			Platform: model.PlatformSteam, Identifier: appID, DiscountPercent: 50, FinalPrice: 500, OriginalPrice: 1000,
		}
	}
	store := &fakeStore{items: items}
	source := &fakeSource{
		snapshots: snapshots,
		errs:      map[string]error{"30": errors.New("storefront returned 502")},
	}
	notifier := &fakeNotifier{}
	p := newTestPoller(store, source, notifier)

	p.checkPrices(context.Background())

	require.Len(t, notifier.sent, 4)
	for _, a := range notifier.sent {
		assert.NotEqual(t, "30", a.appID)
	}
	_, ok := store.states[stateKey(userID, model.PlatformSteam, "30")]
	assert.False(t, ok, "failed fetch leaves no state behind")
}

func TestCheckPricesFetchesOncePerItemPerCycle(t *testing.T) {
	// Two subscribers to the same app share one fetch.
	store := &fakeStore{items: []model.TrackedItem{
		trackedSteamItem(primitive.NewObjectID(), "400"),
		trackedSteamItem(primitive.NewObjectID(), "400"),
	}}
	source := &fakeSource{snapshots: map[string]model.PriceSnapshot{
		"400": {Platform: model.PlatformSteam, Identifier: "400", DiscountPercent: 10, FinalPrice: 900, OriginalPrice: 1000},
	}}
	notifier := &fakeNotifier{}
	p := newTestPoller(store, source, notifier)

	p.checkPrices(context.Background())

	assert.Equal(t, []string{"400"}, source.fetches)
	assert.Len(t, notifier.sent, 2)
}

func TestCheckPricesSkipsUnsupportedPlatform(t *testing.T) {
	store := &fakeStore{items: []model.TrackedItem{{
		UserID:     primitive.NewObjectID(),
		Platform:   model.PlatformOther,
		Identifier: "some-game",
	}}}
	source := &fakeSource{}
	notifier := &fakeNotifier{}
	p := newTestPoller(store, source, notifier)

	p.checkPrices(context.Background())

	assert.Empty(t, source.fetches)
	assert.Empty(t, notifier.sent)
}

func TestCheckPricesCommitsStateBeforeDelivery(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeStore{items: []model.TrackedItem{trackedSteamItem(userID, "400")}}
	source := &fakeSource{snapshots: map[string]model.PriceSnapshot{
		"400": {Platform: model.PlatformSteam, Identifier: "400", DiscountPercent: 10, FinalPrice: 900, OriginalPrice: 1000},
	}}
	notifier := &fakeNotifier{sendErr: errors.New("FCM unreachable")}
	p := newTestPoller(store, source, notifier)

	p.checkPrices(context.Background())

	ns, ok := store.states[stateKey(userID, model.PlatformSteam, "400")]
	require.True(t, ok, "state is committed even when delivery fails")
	assert.Equal(t, 10, ns.LastDiscountPercent)

	// The change is not re-alerted once delivery failed.
	notifier.sendErr = nil
	p.checkPrices(context.Background())
	assert.Len(t, notifier.sent, 1)
}

func TestCheckPricesThresholdDefersAlert(t *testing.T) {
	userID := primitive.NewObjectID()
	ti := trackedSteamItem(userID, "400")
	ti.AlertThreshold = 800
	store := &fakeStore{items: []model.TrackedItem{ti}}
	source := &fakeSource{snapshots: map[string]model.PriceSnapshot{
		"400": {Platform: model.PlatformSteam, Identifier: "400", DiscountPercent: 10, FinalPrice: 900, OriginalPrice: 1000},
	}}
	notifier := &fakeNotifier{}
	p := newTestPoller(store, source, notifier)

	// Above the threshold: no alert and no state, so the alert stays armed.
	p.checkPrices(context.Background())
	assert.Empty(t, notifier.sent)
	_, ok := store.states[stateKey(userID, model.PlatformSteam, "400")]
	assert.False(t, ok)

	// The price reaches the threshold and the deferred alert fires.
	source.snapshots["400"] = model.PriceSnapshot{
		Platform: model.PlatformSteam, Identifier: "400", DiscountPercent: 25, FinalPrice: 750, OriginalPrice: 1000,
	}
	p.checkPrices(context.Background())
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, reasonDiscountDetected, notifier.sent[0].reason)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "a", coalesce("a", "b"))
	assert.Equal(t, "b", coalesce("", "b"))
	assert.Equal(t, "", coalesce("", ""))
}
