package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository/repotest"
)

type recordingPublisher struct {
	events []queue.MovieEvent
	err    error
}

func (p *recordingPublisher) PublishMovieEvent(_ context.Context, ev queue.MovieEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type movieFixture struct {
	repo   *repotest.Movies
	tx     *repotest.Tx
	events *recordingPublisher
	logs   *bytes.Buffer
	uc     *Movies
}

func newMovieFixture() *movieFixture {
	f := &movieFixture{
		repo:   repotest.NewMovies(),
		tx:     &repotest.Tx{},
		events: &recordingPublisher{},
		logs:   &bytes.Buffer{},
	}
	log := slog.New(slog.NewTextHandler(f.logs, nil))
	f.uc = NewMovies(f.repo, f.tx, f.events, log)
	return f
}

func ptr[T any](v T) *T { return &v }

func sampleMovie() dto.CreateMovieRequest {
	return dto.CreateMovieRequest{
		Title:             "Central do Brasil",
		ReleaseYear:       1998,
		Genre:             "Drama",
		Synopsis:          "A former schoolteacher helps a boy find his father.",
		DurationInMinutes: 113,
	}
}

func TestCreateMovie(t *testing.T) {
	f := newMovieFixture()
	ctx := context.Background()

	m, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, uint64(1), m.UserID)
	assert.Equal(t, 1, f.tx.Calls)

	got, err := f.uc.Get.Execute(ctx, m.ID, ptr(uint64(1)))
	require.NoError(t, err)
	assert.Equal(t, m.Title, got.Title)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, queue.MovieCreated, f.events.events[0].Type)
	assert.Contains(t, f.logs.String(), "movie created")
}

func TestCreateMovieWrapsPersistenceFailure(t *testing.T) {
	f := newMovieFixture()
	f.repo.Err = errors.New("connection refused")

	_, err := f.uc.Create.Execute(context.Background(), sampleMovie(), 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindCreation))
	ae, _ := apperror.As(err)
	assert.Equal(t, "Failed to create movie", ae.Message)
	assert.Empty(t, f.events.events)
}

func TestCreateMovieIgnoresPublishFailure(t *testing.T) {
	f := newMovieFixture()
	f.events.err = errors.New("broker down")

	_, err := f.uc.Create.Execute(context.Background(), sampleMovie(), 1)
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "movie event not published")
}

func TestUpdateMovieWithoutChangesWritesNothing(t *testing.T) {
	f := newMovieFixture()
	ctx := context.Background()
	m, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
	require.NoError(t, err)
	f.logs.Reset()
	txBefore := f.tx.Calls

	for name, req := range map[string]dto.UpdateMovieRequest{
		"empty":       {},
		"same values": {Title: ptr(m.Title), ReleaseYear: ptr(m.ReleaseYear)},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := f.uc.Update.Execute(ctx, m.ID, req, ptr(uint64(1)))
			require.NoError(t, err)
			assert.Equal(t, *m, *got)
		})
	}
	assert.Equal(t, 0, f.repo.Updates)
	assert.Equal(t, txBefore, f.tx.Calls)
	assert.NotContains(t, f.logs.String(), "movie updated")
	assert.Len(t, f.events.events, 1)
}

func TestUpdateMovieAppliesOnlyProvidedFields(t *testing.T) {
	f := newMovieFixture()
	ctx := context.Background()
	m, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
	require.NoError(t, err)

	got, err := f.uc.Update.Execute(ctx, m.ID, dto.UpdateMovieRequest{
		Genre:     ptr("Road movie"),
		PosterURL: ptr("https://img.example.com/central.jpg"),
	}, ptr(uint64(1)))
	require.NoError(t, err)
	assert.Equal(t, "Road movie", got.Genre)
	assert.Equal(t, m.Title, got.Title)
	require.NotNil(t, got.PosterURL)
	assert.Equal(t, 1, f.repo.Updates)
	assert.Contains(t, f.logs.String(), "fields=\"[genre poster_url]\"")

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, queue.MovieUpdated, last.Type)
	assert.Equal(t, []string{"genre", "poster_url"}, last.Fields)
}

func TestUpdateMovieFailureIsUpdateError(t *testing.T) {
	f := newMovieFixture()
	ctx := context.Background()
	m, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
	require.NoError(t, err)
	f.tx.Err = errors.New("deadlock")

	_, err = f.uc.Update.Execute(ctx, m.ID, dto.UpdateMovieRequest{Title: ptr("Other")}, ptr(uint64(1)))
	assert.True(t, apperror.IsKind(err, apperror.KindUpdate))
}

func TestScopedAccessByOtherUserIsNotFound(t *testing.T) {
	f := newMovieFixture()
	ctx := context.Background()
	m, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
	require.NoError(t, err)
	intruder := ptr(uint64(2))

	_, err = f.uc.Get.Execute(ctx, m.ID, intruder)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = f.uc.Update.Execute(ctx, m.ID, dto.UpdateMovieRequest{Title: ptr("Hijacked")}, intruder)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = f.uc.Delete.Execute(ctx, m.ID, intruder)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// the owner still sees the untouched movie
	got, err := f.uc.Get.Execute(ctx, m.ID, ptr(uint64(1)))
	require.NoError(t, err)
	assert.Equal(t, m.Title, got.Title)

	// an unscoped lookup ignores ownership
	_, err = f.uc.Get.Execute(ctx, m.ID, nil)
	assert.NoError(t, err)
}

func TestDeleteMovieRemovesFromListing(t *testing.T) {
	f := newMovieFixture()
	ctx := context.Background()
	a, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
	require.NoError(t, err)
	b, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete.Execute(ctx, a.ID, ptr(uint64(1))))

	page, err := f.uc.ByUser.Execute(ctx, 1, dto.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ID)

	_, err = f.uc.Get.Execute(ctx, a.ID, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Equal(t, queue.MovieDeleted, f.events.events[len(f.events.events)-1].Type)
}

func TestListingIsScopedAndPaginated(t *testing.T) {
	f := newMovieFixture()
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		_, err := f.uc.Create.Execute(ctx, sampleMovie(), 1)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := f.uc.Create.Execute(ctx, sampleMovie(), 2)
		require.NoError(t, err)
	}

	page, err := f.uc.ByUser.Execute(ctx, 1, dto.Pagination{})
	require.NoError(t, err)
	assert.Len(t, page.Items, dto.DefaultPerPage)
	assert.Equal(t, 20, page.Total)
	assert.Equal(t, 2, page.LastPage())
	for _, m := range page.Items {
		assert.Equal(t, uint64(1), m.UserID)
	}

	second, err := f.uc.ByUser.Execute(ctx, 1, dto.Pagination{Page: 2, PerPage: 15})
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)

	other, err := f.uc.ByUser.Execute(ctx, 2, dto.Pagination{})
	require.NoError(t, err)
	assert.Len(t, other.Items, 3)

	all, err := f.uc.All.Execute(ctx, dto.Pagination{PerPage: 100})
	require.NoError(t, err)
	assert.Equal(t, 23, all.Total)
	assert.Len(t, all.Items, 23)
}

func TestListingFailureIsInternal(t *testing.T) {
	f := newMovieFixture()
	f.repo.Err = errors.New("boom")
	_, err := f.uc.ByUser.Execute(context.Background(), 1, dto.Pagination{})
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
}
