package advisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
	"github.com/MikeSquared-Agency/Admit/internal/hermes"
	"github.com/MikeSquared-Agency/Admit/internal/store"
	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

type MockHermes struct {
	mock.Mock
}

func (m *MockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockHermes) Subscribe(subject string, handler func(string, []byte)) error {
	args := m.Called(subject, handler)
	return args.Error(0)
}

func (m *MockHermes) Close() {}

type invalidatingSource struct {
	store.StaticSource
	invalidated int
}

func (s *invalidatingSource) Invalidate(_ context.Context) error {
	s.invalidated++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDataset() *catalog.Dataset {
	return &catalog.Dataset{
		Institutions: []catalog.InstitutionRef{
			{ID: "uct", Name: "University of Cape Town", Abbreviation: "UCT", UsesCustomScoring: true},
			{ID: "tut", Name: "Tshwane University of Technology", Abbreviation: "TUT"},
		},
		Programs: []catalog.Program{
			{ID: "eng", Name: "BSc Engineering", FacultyName: "Engineering", RequiredScore: 42},
			{ID: "bsc", Name: "BSc Computer Science", FacultyName: "Science", RequiredScore: 36},
			{ID: "ba", Name: "BA", FacultyName: "Humanities", RequiredScore: 30},
			{ID: "med", Name: "MBChB", FacultyName: "Health Sciences", RequiredScore: 45},
		},
		Rules: []catalog.AssignmentRule{
			{ProgramID: "eng", Mode: catalog.ModeAll},
			{ProgramID: "bsc", Mode: catalog.ModeAllExcept, ExcludedInstitutionIDs: []string{"tut"}},
			{ProgramID: "ba", Mode: catalog.ModeAll, RequiredScoreOverrides: map[string]int{"uct": 50}},
			{ProgramID: "med", Mode: catalog.ModeAll},
		},
	}
}

func sampleSubjects() []subject.Result {
	return []subject.Result{
		{Name: "Mathematics", RawMark: 92},
		{Name: "English", RawMark: 85},
		{Name: "PhysicalScience", RawMark: 88},
		{Name: "LifeSciences", RawMark: 84},
		{Name: "Geography", RawMark: 81},
		{Name: "History", RawMark: 79},
		{Name: "LifeOrientation", RawMark: 75},
	}
}

func loadedAdvisor(t *testing.T, policy Policy, h hermes.Client) *Advisor {
	t.Helper()
	a := New(store.StaticSource{Dataset: testDataset()}, policy, h, nil, discardLogger())
	_, err := a.Reload(context.Background())
	require.NoError(t, err)
	return a
}

func TestReloadPublishesTree(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", hermes.SubjectCatalogReloaded, mock.AnythingOfType("hermes.CatalogReloadedEvent")).Return(nil)

	a := New(store.StaticSource{Dataset: testDataset()}, DefaultPolicy(), h, nil, discardLogger())
	_, err := a.Institutions()
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)
	_, err = a.Institution("uct")
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)

	report, err := a.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, report.HasFatal())

	insts, err := a.Institutions()
	require.NoError(t, err)
	require.Len(t, insts, 2)
	assert.Equal(t, 4, insts[0].ProgramCount())
	assert.Equal(t, 3, insts[1].ProgramCount())

	uct, err := a.Institution("uct")
	require.NoError(t, err)
	assert.Equal(t, "UCT", uct.Abbreviation)
	_, err = a.Institution("nope")
	assert.ErrorIs(t, err, ErrUnknownInstitution)

	h.AssertExpectations(t)
	event := h.Calls[0].Arguments.Get(1).(hermes.CatalogReloadedEvent)
	assert.Equal(t, 2, event.Institutions)
	assert.Equal(t, 4, event.Programs)
}

func TestReloadRejectsFatalAndKeepsPrevious(t *testing.T) {
	src := &invalidatingSource{StaticSource: store.StaticSource{Dataset: testDataset()}}
	a := New(src, DefaultPolicy(), nil, nil, discardLogger())
	_, err := a.Reload(context.Background())
	require.NoError(t, err)
	before := a.Snapshot()

	broken := testDataset()
	broken.Programs = append(broken.Programs, catalog.Program{ID: "eng", Name: "Duplicate", FacultyName: "Engineering"})
	src.Dataset = broken

	report, err := a.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrCatalogIntegrity))
	assert.True(t, report.HasFatal())
	assert.Same(t, before, a.Snapshot())
	assert.Equal(t, 2, src.invalidated)
}

func TestReloadPublishesRejection(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", hermes.SubjectCatalogRejected, mock.AnythingOfType("hermes.CatalogRejectedEvent")).Return(nil)

	broken := testDataset()
	broken.Rules = broken.Rules[:1]
	a := New(store.StaticSource{Dataset: broken}, DefaultPolicy(), h, nil, discardLogger())

	_, err := a.Reload(context.Background())
	require.ErrorIs(t, err, catalog.ErrCatalogIntegrity)
	assert.Nil(t, a.Snapshot())
	h.AssertExpectations(t)
}

func TestReloadSourceError(t *testing.T) {
	a := New(store.StaticSource{}, DefaultPolicy(), nil, nil, discardLogger())
	_, err := a.Reload(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestValidateDoesNotPublish(t *testing.T) {
	broken := testDataset()
	broken.Rules = append(broken.Rules, catalog.AssignmentRule{ProgramID: "ghost", Mode: catalog.ModeAll})
	a := New(store.StaticSource{Dataset: broken}, DefaultPolicy(), nil, nil, discardLogger())

	report, err := a.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, report.HasFatal())
	assert.NotEmpty(t, report.Warnings())
	assert.Nil(t, a.Snapshot())
}

func TestScore(t *testing.T) {
	a := loadedAdvisor(t, DefaultPolicy(), nil)

	report, err := a.Score(Request{Subjects: sampleSubjects()})
	require.NoError(t, err)
	assert.Equal(t, 41, report.StandardScore)
	assert.Equal(t, 42, report.StandardMaxScore)
	assert.True(t, report.Admission.Ready)
	assert.Equal(t, 7, report.Subjects[0].LevelPoints())

	require.Len(t, report.InstitutionScores, 2)
	assert.Equal(t, "uct", report.InstitutionScores[0].InstitutionID)
	assert.Equal(t, 48, report.InstitutionScores[0].Score)
	assert.Equal(t, 54, report.InstitutionScores[0].MaxScore)
	assert.Equal(t, 41, report.InstitutionScores[1].Score)
}

func TestScoreSelection(t *testing.T) {
	a := loadedAdvisor(t, DefaultPolicy(), nil)

	report, err := a.Score(Request{Subjects: sampleSubjects(), InstitutionIDs: []string{"tut"}})
	require.NoError(t, err)
	require.Len(t, report.InstitutionScores, 1)
	assert.Equal(t, "Tshwane University of Technology", report.InstitutionScores[0].InstitutionName)

	_, err = a.Score(Request{Subjects: sampleSubjects(), InstitutionIDs: []string{"tut", "mit"}})
	assert.ErrorIs(t, err, ErrUnknownInstitution)
}

func TestScoreErrors(t *testing.T) {
	a := New(store.StaticSource{Dataset: testDataset()}, DefaultPolicy(), nil, nil, discardLogger())
	_, err := a.Score(Request{Subjects: sampleSubjects()})
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)

	_, err = a.Reload(context.Background())
	require.NoError(t, err)
	_, err = a.Score(Request{Subjects: []subject.Result{{Name: "Mathematics", RawMark: 101}}})
	assert.ErrorIs(t, err, subject.ErrInvalidMark)
}

func TestEvaluateStandardScore(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", hermes.SubjectCatalogReloaded, mock.Anything).Return(nil)
	h.On("Publish", mock.MatchedBy(func(s string) bool { return s != hermes.SubjectCatalogReloaded }),
		mock.AnythingOfType("hermes.EvaluationCompletedEvent")).Return(errors.New("nats down"))

	a := loadedAdvisor(t, DefaultPolicy(), h)
	eval, err := a.Evaluate(context.Background(), Request{Subjects: sampleSubjects()})
	require.NoError(t, err)

	assert.NotEmpty(t, eval.ID)
	var got []string
	for _, r := range eval.Results {
		got = append(got, r.Institution.ID+"/"+r.Program.ID)
	}
	assert.Equal(t, []string{
		"tut/ba", "uct/bsc",
		"uct/eng", "tut/eng", "uct/med", "tut/med", "uct/ba",
	}, got)

	var almost []string
	for _, r := range eval.AlmostEligible {
		almost = append(almost, r.Institution.ID+"/"+r.Program.ID)
	}
	assert.Equal(t, []string{"uct/eng", "tut/eng", "uct/med", "tut/med"}, almost)

	assert.Equal(t, 7, eval.Summary.Total)
	assert.Equal(t, 2, eval.Summary.EligibleCount)
	assert.Equal(t, 4, eval.Summary.AlmostEligibleCount)
	assert.Equal(t, 29, eval.Summary.EligibilityRatePercent)
	assert.Equal(t, DefaultPolicy().Bands[3].Guidance, eval.Recommendations)

	h.AssertExpectations(t)
	event := h.Calls[1].Arguments.Get(1).(hermes.EvaluationCompletedEvent)
	assert.Equal(t, hermes.SubjectEvaluationCompleted(eval.ID), h.Calls[1].Arguments.String(0))
	assert.Equal(t, 41, event.StandardScore)
	assert.Equal(t, 2, event.EligibleCount)
}

func TestEvaluateOnInstitutionScale(t *testing.T) {
	policy := DefaultPolicy()
	policy.MatchOnInstitutionScale = true
	a := loadedAdvisor(t, policy, nil)

	eval, err := a.Evaluate(context.Background(), Request{Subjects: sampleSubjects()})
	require.NoError(t, err)

	scores := make(map[string]int)
	eligible := make(map[string]bool)
	for _, r := range eval.Results {
		scores[r.Institution.ID] = r.StudentScore
		eligible[r.Institution.ID+"/"+r.Program.ID] = r.MeetsRequirement
	}
	assert.Equal(t, 48, scores["uct"])
	assert.Equal(t, 41, scores["tut"])
	assert.True(t, eligible["uct/eng"])
	assert.True(t, eligible["uct/med"])
	assert.False(t, eligible["uct/ba"])
	assert.False(t, eligible["tut/eng"])
}

func TestEvaluateCancelled(t *testing.T) {
	a := loadedAdvisor(t, DefaultPolicy(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Evaluate(ctx, Request{Subjects: sampleSubjects()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListenForReloads(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", mock.Anything, mock.Anything).Return(nil)
	h.On("Subscribe", hermes.SubjectCatalogReloadRequested, mock.Anything).Return(nil)

	src := &invalidatingSource{StaticSource: store.StaticSource{Dataset: testDataset()}}
	a := New(src, DefaultPolicy(), h, nil, discardLogger())
	require.NoError(t, a.ListenForReloads(context.Background()))
	assert.Nil(t, a.Snapshot())

	var handler func(string, []byte)
	for _, c := range h.Calls {
		if c.Method == "Subscribe" {
			handler = c.Arguments.Get(1).(func(string, []byte))
		}
	}
	require.NotNil(t, handler)

	handler(hermes.SubjectCatalogReloadRequested, []byte(`{"requested_by":"test"}`))
	require.NotNil(t, a.Snapshot())
	insts, err := a.Institutions()
	require.NoError(t, err)
	assert.Len(t, insts, 2)
	assert.Equal(t, 1, src.invalidated)
}

func TestListenForReloadsWithoutHermes(t *testing.T) {
	a := New(store.StaticSource{Dataset: testDataset()}, DefaultPolicy(), nil, nil, discardLogger())
	assert.ErrorIs(t, a.ListenForReloads(context.Background()), ErrNoHermes)
}

func aboveMax(report catalog.Report) []string {
	var out []string
	for _, is := range report.Warnings() {
		if is.Code == catalog.CodeRequiredScoreAboveMax {
			out = append(out, is.InstitutionID+"/"+is.ProgramID)
		}
	}
	return out
}

func TestReloadWarnsOnUnreachableScores(t *testing.T) {
	t.Run("standard scale", func(t *testing.T) {
		a := New(store.StaticSource{Dataset: testDataset()}, DefaultPolicy(), nil, nil, discardLogger())
		report, err := a.Reload(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"uct/ba", "uct/med", "tut/med"}, aboveMax(report))
	})

	t.Run("institution scale", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.MatchOnInstitutionScale = true
		a := New(store.StaticSource{Dataset: testDataset()}, policy, nil, nil, discardLogger())
		report, err := a.Validate(context.Background())
		require.NoError(t, err)
		// UCT is matched on its own 54-point scale.
		assert.Equal(t, []string{"tut/med"}, aboveMax(report))
	})
}

// slowSource records how many loads overlap.
type slowSource struct {
	store.StaticSource
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (s *slowSource) Load(ctx context.Context) (*catalog.Dataset, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return s.StaticSource.Load(ctx)
}

func TestReloadIsSerialized(t *testing.T) {
	src := &slowSource{StaticSource: store.StaticSource{Dataset: testDataset()}}
	a := New(src, DefaultPolicy(), nil, nil, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Reload(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.maxSeen.Load())
	assert.NotNil(t, a.Snapshot())
}
