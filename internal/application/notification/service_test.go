package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uninotify/notification-api/internal/domain"
	"github.com/uninotify/notification-api/internal/infrastructure/memory"
)

// --- mocks ---

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNotificationStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) MarkRead(ctx context.Context, notificationID string, at time.Time) (bool, error) {
	args := m.Called(ctx, notificationID, at)
	return args.Bool(0), args.Error(1)
}
func (m *mockNotificationStore) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	args := m.Called(ctx, userID, at)
	return args.Int(0), args.Error(1)
}
func (m *mockNotificationStore) Delete(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}
func (m *mockNotificationStore) List(ctx context.Context, userID string, f domain.NotificationFilter, offset, limit int) ([]domain.Notification, int, error) {
	args := m.Called(ctx, userID, f, offset, limit)
	return args.Get(0).([]domain.Notification), args.Int(1), args.Error(2)
}
func (m *mockNotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// --- helpers ---

func newMemService() *service {
	return NewService(memory.NewNotificationRepo()).(*service)
}

func seed(t *testing.T, svc Service, userID, typ string) *domain.Notification {
	t.Helper()
	n, err := svc.Create(context.Background(), domain.CreateNotificationInput{
		UserID: userID, Title: "Title", Body: "Body", Type: typ,
	})
	require.NoError(t, err)
	return n
}

func ptr[T any](v T) *T { return &v }

// --- Create ---

func TestCreate_PersistsWithDefaults(t *testing.T) {
	svc := newMemService()
	n, err := svc.Create(context.Background(), domain.CreateNotificationInput{
		UserID:      "u1",
		Title:       "Ticket answered",
		Body:        "Support replied to your ticket",
		Type:        domain.NotificationTypeTicket,
		SenderID:    ptr("admin-1"),
		RelatedType: ptr("ticket"),
		RelatedID:   ptr("42"),
		Data:        domain.Payload{"ticket_id": 42},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.NotificationID)
	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadAt)
	assert.Equal(t, "admin-1", *n.SenderID)

	got, err := svc.Get(context.Background(), n.NotificationID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ticket", *got.RelatedType)
}

func TestCreate_EmptyOptionalRefsStoredAsNil(t *testing.T) {
	svc := newMemService()
	n, err := svc.Create(context.Background(), domain.CreateNotificationInput{
		UserID: "u1", Title: "t", Type: "system", SenderID: ptr(""), RelatedType: ptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, n.SenderID)
	assert.Nil(t, n.RelatedType)
	assert.NotNil(t, n.Data)
}

func TestCreate_RequiresRecipient(t *testing.T) {
	_, err := newMemService().Create(context.Background(), domain.CreateNotificationInput{Title: "x"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_PropagatesStoreError(t *testing.T) {
	st := &mockNotificationStore{}
	storeErr := errors.New("dynamo error")
	st.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(storeErr)

	_, err := NewService(st).Create(context.Background(), domain.CreateNotificationInput{UserID: "u1"})
	assert.Equal(t, storeErr, err)
}

// --- MarkRead ---

func TestMarkRead_IsMonotonic(t *testing.T) {
	svc := newMemService()
	ctx := context.Background()
	n := seed(t, svc, "u1", "ticket")

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	changed, err := svc.MarkRead(ctx, n.NotificationID, "u1")
	require.NoError(t, err)
	assert.True(t, changed)

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	changed, err = svc.MarkRead(ctx, n.NotificationID, "u1")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := svc.Get(ctx, n.NotificationID, "u1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	require.NotNil(t, got.ReadAt)
	assert.Equal(t, t0, *got.ReadAt)
}

func TestMarkRead_NotFound(t *testing.T) {
	_, err := newMemService().MarkRead(context.Background(), "missing", "u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMarkRead_OtherUser_Forbidden(t *testing.T) {
	svc := newMemService()
	n := seed(t, svc, "u1", "ticket")
	_, err := svc.MarkRead(context.Background(), n.NotificationID, "u2")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestMarkRead_StoreLosesRace_ReportsNoChange(t *testing.T) {
	st := &mockNotificationStore{}
	st.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)
	st.On("MarkRead", mock.Anything, "n1", mock.Anything).Return(false, nil)

	changed, err := NewService(st).MarkRead(context.Background(), "n1", "u1")
	require.NoError(t, err)
	assert.False(t, changed)
	st.AssertExpectations(t)
}

// --- MarkAllRead / UnreadCount ---

func TestMarkAllRead_FlipsOnlyUnread(t *testing.T) {
	svc := newMemService()
	ctx := context.Background()
	var all []*domain.Notification
	for i := 0; i < 8; i++ {
		all = append(all, seed(t, svc, "u1", "schedule"))
	}
	for _, n := range all[:3] {
		_, err := svc.MarkRead(ctx, n.NotificationID, "u1")
		require.NoError(t, err)
	}
	seed(t, svc, "u2", "schedule")

	count, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	unread, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, unread)

	other, err := svc.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, other)
}

func TestMarkAllRead_SingleTimestampForBatch(t *testing.T) {
	svc := newMemService()
	ctx := context.Background()
	a := seed(t, svc, "u1", "system")
	b := seed(t, svc, "u1", "system")

	at := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	svc.now = func() time.Time { return at }
	_, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)

	for _, n := range []*domain.Notification{a, b} {
		got, err := svc.Get(ctx, n.NotificationID, "u1")
		require.NoError(t, err)
		assert.Equal(t, at, *got.ReadAt)
	}
}

func TestMarkAllRead_NothingUnread(t *testing.T) {
	count, err := newMemService().MarkAllRead(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, count)
}

// --- Delete ---

func TestDelete_OwnerOnly(t *testing.T) {
	svc := newMemService()
	ctx := context.Background()
	n := seed(t, svc, "u1", "personal")

	err := svc.Delete(ctx, n.NotificationID, "u2")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, n.NotificationID, "u1"))
	_, err = svc.Get(ctx, n.NotificationID, "u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteAny_SkipsOwnership(t *testing.T) {
	svc := newMemService()
	n := seed(t, svc, "u1", "personal")
	require.NoError(t, svc.DeleteAny(context.Background(), n.NotificationID))
	err := svc.DeleteAny(context.Background(), n.NotificationID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- List ---

func TestList_NewestFirstWithCounts(t *testing.T) {
	svc := newMemService()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		ids = append(ids, seed(t, svc, "u1", "ticket").NotificationID)
	}
	_, err := svc.MarkRead(ctx, ids[0], "u1")
	require.NoError(t, err)

	page, err := svc.List(ctx, "u1", domain.NotificationFilter{}, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[4], page.Items[0].NotificationID)
	assert.Equal(t, ids[3], page.Items[1].NotificationID)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 4, page.UnreadCount)
	assert.Equal(t, 3, page.TotalPages)

	last, err := svc.List(ctx, "u1", domain.NotificationFilter{}, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, ids[0], last.Items[0].NotificationID)

	beyond, err := svc.List(ctx, "u1", domain.NotificationFilter{}, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
}

func TestList_FiltersAreANDed(t *testing.T) {
	svc := newMemService()
	ctx := context.Background()
	readTicket := seed(t, svc, "u1", "ticket")
	seed(t, svc, "u1", "ticket")
	seed(t, svc, "u1", "schedule")
	_, err := svc.MarkRead(ctx, readTicket.NotificationID, "u1")
	require.NoError(t, err)

	page, err := svc.List(ctx, "u1", domain.NotificationFilter{UnreadOnly: true, Type: "ticket"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 2, page.UnreadCount)

	page, err = svc.List(ctx, "u1", domain.NotificationFilter{Type: "schedule"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
}

func TestList_ClampsPagination(t *testing.T) {
	st := &mockNotificationStore{}
	st.On("List", mock.Anything, "u1", domain.NotificationFilter{}, 0, MaxPageSize).Return([]domain.Notification{}, 0, nil)
	st.On("CountUnread", mock.Anything, "u1").Return(0, nil)

	page, err := NewService(st).List(context.Background(), "u1", domain.NotificationFilter{}, -3, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Zero(t, page.TotalPages)
	st.AssertExpectations(t)
}

func TestList_HugePageIsEmptyNotPanic(t *testing.T) {
	repo := memory.NewNotificationRepo()
	svc := NewService(repo)
	_, err := svc.Create(context.Background(), domain.CreateNotificationInput{UserID: "u1", Title: "T", Type: domain.NotificationTypeSystem})
	require.NoError(t, err)

	var page *domain.NotificationPage
	require.NotPanics(t, func() {
		page, err = svc.List(context.Background(), "u1", domain.NotificationFilter{}, 922337203685477581, 20)
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 1, page.UnreadCount)
}
