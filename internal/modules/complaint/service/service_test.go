package complaint_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/complaint/dto"
	"anoa.com/hostelhub/internal/modules/complaint/repository"
	complaint "anoa.com/hostelhub/internal/modules/complaint/service"
	notifRepo "anoa.com/hostelhub/internal/modules/notification/repository"
	notification "anoa.com/hostelhub/internal/modules/notification/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/search"
	"anoa.com/hostelhub/internal/testutil"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/ratelimiter"
	"anoa.com/hostelhub/pkg/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeIndex struct {
	indexed map[uuid.UUID]string
	hits    []uuid.UUID
	err     error
}

func (f *fakeIndex) Index(_ context.Context, c *entity.Complaint) error {
	f.indexed[c.ID] = c.Status
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, policy.Predicate, int) ([]uuid.UUID, error) {
	return f.hits, f.err
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fixture struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	index    *fakeIndex
	images   *fakeStorage
	svc      complaint.ComplaintService
	student  policy.Identity
	other    policy.Identity
	wardenA  policy.Identity
	wardenB  policy.Identity
	admin    policy.Identity
	notifier notification.NotificationService
}

func setup(t *testing.T, index search.ComplaintIndex, images storage.ImageStorage) *fixture {
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), rdb)

	f := &fixture{
		db:       db,
		mr:       mr,
		notifier: notifier,
		student:  policy.NewIdentity(testutil.CreateStudent(t, db, "s@hostel.test", "A-1", "A")),
		other:    policy.NewIdentity(testutil.CreateStudent(t, db, "o@hostel.test", "A-2", "A")),
		wardenA:  policy.NewIdentity(testutil.CreateWarden(t, db, "wa@hostel.test", "A")),
		wardenB:  policy.NewIdentity(testutil.CreateWarden(t, db, "wb@hostel.test", "B")),
		admin:    policy.NewIdentity(testutil.CreateAdmin(t, db, "admin@hostel.test")),
	}
	if fi, ok := index.(*fakeIndex); ok {
		f.index = fi
	}
	if fs, ok := images.(*fakeStorage); ok {
		f.images = fs
	}

	f.svc = complaint.NewComplaintService(
		repository.NewComplaintRepository(db),
		notifier,
		index,
		images,
		rdb,
		nil,
		complaint.Config{RateLimit: 30 * time.Second, ImageFolder: "hostel_complaints"},
	)
	return f
}

func fileComplaint(t *testing.T, f *fixture, id policy.Identity, title string) *entity.Complaint {
	t.Helper()
	c, err := f.svc.Create(context.Background(), id, dto.CreateComplaintRequest{
		Title: title, Description: "Needs attention in room 101", Category: "Electrical",
	})
	require.NoError(t, err)
	return c
}

func TestCreateComplaint(t *testing.T) {
	index := &fakeIndex{indexed: map[uuid.UUID]string{}}
	f := setup(t, index, nil)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.student, dto.CreateComplaintRequest{
		Title: "<b>Fan</b> broken", Description: "Fan <script>x</script>stopped", Category: "Electrical",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fan broken", c.Title)
	assert.Equal(t, "Fan stopped", c.Description)
	assert.Equal(t, entity.TicketPending, c.Status)
	assert.Equal(t, *f.student.StudentID, c.StudentID)
	assert.Equal(t, entity.TicketPending, index.indexed[c.ID])

	t.Run("second complaint inside the cooldown is rejected", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.student, dto.CreateComplaintRequest{Title: "Again", Description: "Again", Category: "Other"})
		var rl *ratelimiter.RateLimitError
		require.True(t, errors.As(err, &rl))
		assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
		assert.Greater(t, rl.RetryAfter, time.Duration(0))

		f.mr.FastForward(31 * time.Second)
		_, err = f.svc.Create(ctx, f.student, dto.CreateComplaintRequest{Title: "Again", Description: "Again", Category: "Other"})
		assert.NoError(t, err)
	})

	t.Run("staff cannot file complaints", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.wardenA, dto.CreateComplaintRequest{Title: "x", Description: "y", Category: "Other"})
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	t.Run("markup only text is invalid and releases the cooldown", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.other, dto.CreateComplaintRequest{Title: "<i></i>", Description: "y", Category: "Other"})
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

		_, err = f.svc.Create(ctx, f.other, dto.CreateComplaintRequest{Title: "Real", Description: "y", Category: "Other"})
		assert.NoError(t, err)
	})
}

func TestComplaintScoping(t *testing.T) {
	f := setup(t, nil, nil)
	ctx := context.Background()

	mine := fileComplaint(t, f, f.student, "Fan")
	theirs := fileComplaint(t, f, f.other, "Light")

	_, err := f.svc.GetByID(ctx, f.student, theirs.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.svc.GetByID(ctx, f.student, uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	got, err := f.svc.GetByID(ctx, f.wardenA, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.svc.GetByID(ctx, f.wardenB, mine.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	own, err := f.svc.GetAll(ctx, f.student, dto.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	block, err := f.svc.GetAll(ctx, f.wardenA, dto.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, block, 2)

	none, err := f.svc.GetAll(ctx, f.wardenB, dto.ComplaintFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	filtered, err := f.svc.GetAll(ctx, f.admin, dto.ComplaintFilter{HostelBlock: "B"})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	byStatus, err := f.svc.GetAll(ctx, f.admin, dto.ComplaintFilter{Status: entity.TicketPending, Category: "Electrical"})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)
}

func TestComplaintWorkflow(t *testing.T) {
	f := setup(t, nil, nil)
	ctx := context.Background()
	c := fileComplaint(t, f, f.student, "Leaking tap")

	_, err := f.svc.UpdateStatus(ctx, f.student, c.ID, dto.UpdateStatusRequest{Status: entity.TicketResolved})
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "students cannot transition")

	_, err = f.svc.UpdateStatus(ctx, f.wardenB, c.ID, dto.UpdateStatusRequest{Status: entity.TicketInProgress})
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "other block")

	updated, err := f.svc.UpdateStatus(ctx, f.wardenA, c.ID, dto.UpdateStatusRequest{Status: entity.TicketInProgress})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketInProgress, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, f.wardenA.UserID, *updated.AssignedTo)
	assert.Nil(t, updated.RespondedAt)

	_, err = f.svc.Resolve(ctx, f.wardenA, c.ID, dto.ResolveRequest{Resolution: "<p> </p>"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	resolved, err := f.svc.Resolve(ctx, f.wardenA, c.ID, dto.ResolveRequest{Resolution: "Washer replaced"})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketResolved, resolved.Status)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, "Washer replaced", *resolved.Resolution)
	require.NotNil(t, resolved.RespondedBy)
	assert.Equal(t, f.wardenA.UserID, *resolved.RespondedBy)
	assert.NotNil(t, resolved.RespondedAt)

	_, err = f.svc.UpdateStatus(ctx, f.admin, c.ID, dto.UpdateStatusRequest{Status: entity.TicketInProgress})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "resolved is terminal")

	count, err := f.notifier.UnreadCount(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeleteComplaint(t *testing.T) {
	f := setup(t, nil, nil)
	ctx := context.Background()

	pending := fileComplaint(t, f, f.student, "Pending one")
	f.mr.FastForward(time.Minute)
	processing := fileComplaint(t, f, f.student, "Processing one")
	_, err := f.svc.UpdateStatus(ctx, f.wardenA, processing.ID, dto.UpdateStatusRequest{Status: entity.TicketInProgress})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.other, pending.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	err = f.svc.Delete(ctx, f.student, processing.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	require.NoError(t, f.svc.Delete(ctx, f.student, pending.ID))
	require.NoError(t, f.svc.Delete(ctx, f.admin, processing.ID))

	_, err = f.svc.GetByID(ctx, f.admin, pending.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSearchComplaints(t *testing.T) {
	t.Run("index hits are rechecked against scope", func(t *testing.T) {
		index := &fakeIndex{indexed: map[uuid.UUID]string{}}
		f := setup(t, index, nil)
		ctx := context.Background()

		a := fileComplaint(t, f, f.student, "Wifi down")
		b := fileComplaint(t, f, f.other, "Wifi slow")
		index.hits = []uuid.UUID{b.ID, a.ID, uuid.New()}

		results, err := f.svc.Search(ctx, f.admin, dto.SearchQuery{Q: "wifi"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, b.ID, results[0].ID)

		results, err = f.svc.Search(ctx, f.wardenB, dto.SearchQuery{Q: "wifi"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("database fallback", func(t *testing.T) {
		index := &fakeIndex{indexed: map[uuid.UUID]string{}, err: errors.New("meilisearch down")}
		f := setup(t, index, nil)
		ctx := context.Background()

		fileComplaint(t, f, f.student, "Wifi down")
		fileComplaint(t, f, f.other, "Broken chair")

		results, err := f.svc.Search(ctx, f.wardenA, dto.SearchQuery{Q: "WIFI"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Wifi down", results[0].Title)
	})
}

func TestAttachImage(t *testing.T) {
	ctx := context.Background()

	t.Run("storage not configured", func(t *testing.T) {
		f := setup(t, nil, nil)
		c := fileComplaint(t, f, f.student, "Crack")
		_, err := f.svc.AttachImage(ctx, f.student, c.ID, strings.NewReader("img"), "crack.jpg")
		assert.True(t, errors.Is(err, apperror.ErrUnavailable))
	})

	t.Run("owner uploads and replaces", func(t *testing.T) {
		images := &fakeStorage{}
		f := setup(t, nil, images)
		c := fileComplaint(t, f, f.student, "Crack")

		_, err := f.svc.AttachImage(ctx, f.wardenA, c.ID, strings.NewReader("img"), "crack.jpg")
		assert.True(t, errors.Is(err, apperror.ErrForbidden))

		first, err := f.svc.AttachImage(ctx, f.student, c.ID, strings.NewReader("img"), "crack.jpg")
		require.NoError(t, err)
		require.NotNil(t, first.ImageURL)

		_, err = f.svc.AttachImage(ctx, f.student, c.ID, strings.NewReader("img2"), "crack2.jpg")
		require.NoError(t, err)
		assert.Len(t, images.uploaded, 2)
		assert.Equal(t, []string{*first.ImageURL}, images.deleted)
	})
}

// moveOnRead changes the stored status right after the service has read the
// complaint, as a concurrent staff update would.
type moveOnRead struct {
	repository.ComplaintRepository
	db *gorm.DB
	to string
}

func (r *moveOnRead) FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	c, err := r.ComplaintRepository.FindByID(ctx, id)
	if err != nil || r.to == "" {
		return c, err
	}
	if err := r.db.Model(&entity.Complaint{}).Where("id = ?", id).Update("status", r.to).Error; err != nil {
		return nil, err
	}
	r.to = ""
	return c, nil
}

func TestStatusChangedUnderneath(t *testing.T) {
	images := &fakeStorage{}
	f := setup(t, nil, images)
	ctx := context.Background()
	repo := &moveOnRead{ComplaintRepository: repository.NewComplaintRepository(f.db), db: f.db}
	f.svc = complaint.NewComplaintService(repo, f.notifier, nil, images, nil, nil, complaint.Config{ImageFolder: "hostel_complaints"})

	stored := func(id uuid.UUID) string {
		var c entity.Complaint
		require.NoError(t, f.db.First(&c, "id = ?", id).Error)
		return c.Status
	}

	t.Run("student cannot withdraw once processing started", func(t *testing.T) {
		c := fileComplaint(t, f, f.student, "Fan broken")
		repo.to = entity.TicketInProgress

		err := f.svc.Delete(ctx, f.student, c.ID)
		assert.True(t, errors.Is(err, apperror.ErrConflict))
		assert.Equal(t, entity.TicketInProgress, stored(c.ID))
	})

	t.Run("terminal state is not overwritten", func(t *testing.T) {
		c := fileComplaint(t, f, f.student, "Door stuck")
		repo.to = entity.TicketResolved

		_, err := f.svc.UpdateStatus(ctx, f.wardenA, c.ID, dto.UpdateStatusRequest{Status: entity.TicketInProgress})
		assert.True(t, errors.Is(err, apperror.ErrConflict))
		assert.Equal(t, entity.TicketResolved, stored(c.ID))
	})

	t.Run("image upload keeps the current status", func(t *testing.T) {
		c := fileComplaint(t, f, f.student, "Window cracked")
		repo.to = entity.TicketInProgress

		_, err := f.svc.AttachImage(ctx, f.student, c.ID, strings.NewReader("img"), "window.jpg")
		require.NoError(t, err)
		assert.Equal(t, entity.TicketInProgress, stored(c.ID))
	})
}
