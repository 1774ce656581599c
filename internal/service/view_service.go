package service

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/feedbackfile"
	"github.com/noah-isme/gema-assign/internal/plugin/submissionfile"
	"github.com/noah-isme/gema-assign/internal/render"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// Page actions understood by ViewService.Page.
const (
	ActionView                       = "view"
	ActionGrading                    = "grading"
	ActionEditSubmission             = "editsubmission"
	ActionDownloadAll                = "downloadall"
	ActionViewPluginAssignSubmission = "viewplugin" + models.PluginSubtypeSubmission
	ActionViewPluginAssignFeedback   = "viewplugin" + models.PluginSubtypeFeedback
)

// PageRequest carries the query parameters of the assignment page.
type PageRequest struct {
	Action       string
	UserID       uint
	SubmissionID uint
	GradeID      uint
	Plugin       string
	ReturnAction string
}

// ViewService renders the assignment pages and their JSON counterparts.
type ViewService interface {
	Page(ctx context.Context, viewer Viewer, assignmentID uint, req PageRequest) (template.HTML, error)
	Status(ctx context.Context, viewer Viewer, assignmentID, userID uint) (dto.SubmissionStatusResponse, error)
	Files(ctx context.Context, viewer Viewer, assignmentID, userID uint, area string) (template.HTML, error)
	Summary(ctx context.Context, viewer Viewer, assignmentID uint) (SummaryCounts, error)
}

type viewService struct {
	store    *repository.Store
	registry *plugin.Registry
	composer *render.Composer
	strings  *lang.Strings
	cache    *SummaryCache
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewViewService constructs a ViewService instance.
func NewViewService(store *repository.Store, registry *plugin.Registry, composer *render.Composer, strings *lang.Strings, cache *SummaryCache, logger zerolog.Logger) ViewService {
	return &viewService{
		store:    store,
		registry: registry,
		composer: composer,
		strings:  strings,
		cache:    cache,
		logger:   logger.With().Str("component", "view_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/gema-assign/internal/service/view"),
		now:      time.Now,
	}
}

// userState is everything known about one user's attempt.
type userState struct {
	assignment        models.Assignment
	user              models.User
	submission        *models.Submission
	grade             *models.Grade
	grader            *models.User
	scale             *models.Scale
	submissionPlugins []plugin.SubmissionPlugin
	feedbackPlugins   []plugin.FeedbackPlugin
}

func (st userState) locked() bool {
	return st.grade != nil && st.grade.Locked
}

func (st userState) graded() bool {
	return st.grade != nil && st.grade.IsGraded()
}

func (s *viewService) Page(ctx context.Context, viewer Viewer, assignmentID uint, req PageRequest) (template.HTML, error) {
	ctx, span := s.tracer.Start(ctx, "view.page", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignmentID)),
		attribute.String("page.action", req.Action),
	))
	defer span.End()

	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return "", err
	}

	switch req.Action {
	case "", ActionView:
		return s.mainPage(ctx, viewer, assignment, req)
	case ActionGrading:
		return s.gradingPage(ctx, viewer, assignment)
	case ActionEditSubmission:
		return s.editPage(ctx, viewer, assignment)
	case ActionDownloadAll:
		return s.downloadAllPage(ctx, viewer, assignment)
	case ActionViewPluginAssignSubmission:
		return s.submissionPluginPage(ctx, viewer, assignment, req)
	case ActionViewPluginAssignFeedback:
		return s.feedbackPluginPage(ctx, viewer, assignment, req)
	default:
		return "", ErrUnknownAction
	}
}

func (s *viewService) mainPage(ctx context.Context, viewer Viewer, assignment models.Assignment, req PageRequest) (template.HTML, error) {
	header, err := s.composer.Header(render.Header{Assignment: assignment, ShowIntro: true})
	if err != nil {
		return "", err
	}

	if viewer.IsGrader() && req.UserID == 0 {
		counts, err := s.counts(ctx, assignment)
		if err != nil {
			return "", err
		}
		summary, err := s.composer.GradingSummary(ctx, render.GradingSummary{
			Assignment:   assignment,
			Participants: counts.Participants,
			Drafts:       counts.Drafts,
			Submitted:    counts.Submitted,
		})
		if err != nil {
			return "", err
		}
		return s.composer.Page(header, summary)
	}

	userID := viewer.UserID
	if req.UserID != 0 {
		userID = req.UserID
	}
	if !viewer.CanSee(userID) {
		return "", ErrForbidden
	}
	state, err := s.loadState(ctx, assignment, userID)
	if err != nil {
		return "", err
	}

	view := render.StudentView
	var userSummary template.HTML
	if viewer.IsGrader() {
		view = render.GraderView
		if userSummary, err = s.composer.UserSummary(render.UserSummary{User: &state.user, CourseID: assignment.CourseID}); err != nil {
			return "", err
		}
	}

	status, err := s.composer.SubmissionStatus(ctx, render.SubmissionStatus{
		Assignment:   assignment,
		Submission:   state.submission,
		Plugins:      state.submissionPlugins,
		View:         view,
		Locked:       state.locked(),
		Graded:       state.graded(),
		CanEdit:      s.canEdit(viewer, state),
		ReturnAction: ActionView,
	})
	if err != nil {
		return "", err
	}

	feedback, err := s.composer.FeedbackStatus(ctx, render.FeedbackStatus{
		Assignment: assignment,
		Grade:      state.grade,
		Grader:     state.grader,
		Scale:      state.scale,
		Plugins:    state.feedbackPlugins,
	})
	if err != nil {
		return "", err
	}

	return s.composer.Page(header, userSummary, status, feedback)
}

func (s *viewService) gradingPage(ctx context.Context, viewer Viewer, assignment models.Assignment) (template.HTML, error) {
	if !viewer.IsGrader() {
		return "", ErrForbidden
	}

	header, err := s.composer.Header(render.Header{Assignment: assignment, SubPage: s.strings.Get("assign:gradingsummary")})
	if err != nil {
		return "", err
	}

	submissionPlugins, err := s.registry.SubmissionPlugins(ctx, assignment)
	if err != nil {
		return "", err
	}
	feedbackPlugins, err := s.registry.FeedbackPlugins(ctx, assignment)
	if err != nil {
		return "", err
	}
	scale, err := loadScale(ctx, s.store, assignment)
	if err != nil {
		return "", err
	}

	rows, err := s.gradingRows(ctx, assignment)
	if err != nil {
		return "", err
	}

	table, err := s.composer.GradingTable(ctx, render.GradingTable{
		Assignment:        assignment,
		Rows:              rows,
		SubmissionPlugins: submissionPlugins,
		FeedbackPlugins:   feedbackPlugins,
		Scale:             scale,
		ShowGradebook:     true,
	})
	if err != nil {
		return "", err
	}
	return s.composer.Page(header, table)
}

func (s *viewService) gradingRows(ctx context.Context, assignment models.Assignment) ([]render.GradingRow, error) {
	students, err := s.store.Users.ListEnrolled(ctx, assignment.CourseID, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	submissions, err := s.store.Submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignment.ID})
	if err != nil {
		return nil, err
	}
	grades, err := s.store.Grades.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}

	submissionByUser := make(map[uint]models.Submission, len(submissions))
	for _, sub := range submissions {
		submissionByUser[sub.UserID] = sub
	}
	gradeByUser := make(map[uint]models.Grade, len(grades))
	for _, g := range grades {
		gradeByUser[g.UserID] = g
	}

	rows := make([]render.GradingRow, 0, len(students))
	for _, student := range students {
		r := render.GradingRow{User: student}
		if sub, ok := submissionByUser[student.ID]; ok {
			r.Submission = &sub
		}
		if g, ok := gradeByUser[student.ID]; ok {
			r.Grade = &g
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (s *viewService) editPage(ctx context.Context, viewer Viewer, assignment models.Assignment) (template.HTML, error) {
	state, err := s.loadState(ctx, assignment, viewer.UserID)
	if err != nil {
		return "", err
	}
	if !s.canEdit(viewer, state) {
		return "", ErrSubmissionLocked
	}

	header, err := s.composer.Header(render.Header{Assignment: assignment, SubPage: s.strings.Get("assign:editsubmission")})
	if err != nil {
		return "", err
	}
	fragments := []template.HTML{header}

	if state.submission != nil {
		for _, p := range state.submissionPlugins {
			if !p.IsEnabled() {
				continue
			}
			body, err := s.composer.SubmissionPluginView(ctx, assignment, p, *state.submission, render.Full, ActionEditSubmission)
			if err != nil {
				return "", err
			}
			fragments = append(fragments, body)
		}
	}

	back, err := s.composer.BackLink(assignment, ActionView)
	if err != nil {
		return "", err
	}
	return s.composer.Page(append(fragments, back)...)
}

func (s *viewService) downloadAllPage(ctx context.Context, viewer Viewer, assignment models.Assignment) (template.HTML, error) {
	if !viewer.IsGrader() {
		return "", ErrForbidden
	}

	header, err := s.composer.Header(render.Header{Assignment: assignment, SubPage: s.strings.Get("assign:downloadall")})
	if err != nil {
		return "", err
	}
	rows, err := s.gradingRows(ctx, assignment)
	if err != nil {
		return "", err
	}

	fragments := []template.HTML{header}
	for _, r := range rows {
		if r.Submission == nil {
			continue
		}
		summary, err := s.composer.UserSummary(render.UserSummary{User: &r.User, CourseID: assignment.CourseID})
		if err != nil {
			return "", err
		}
		tree, err := s.composer.AssignFiles(ctx, submissionfile.Area(assignment.ID, r.Submission.ID))
		if err != nil {
			return "", err
		}
		fragments = append(fragments, summary, tree)
	}

	back, err := s.composer.BackLink(assignment, ActionGrading)
	if err != nil {
		return "", err
	}
	return s.composer.Page(append(fragments, back)...)
}

func (s *viewService) submissionPluginPage(ctx context.Context, viewer Viewer, assignment models.Assignment, req PageRequest) (template.HTML, error) {
	submission, err := s.store.Submissions.GetByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSubmissionNotFound
		}
		return "", err
	}
	if submission.AssignmentID != assignment.ID {
		return "", ErrSubmissionNotFound
	}
	if !viewer.CanSee(submission.UserID) {
		return "", ErrForbidden
	}

	p, err := s.registry.SubmissionPlugin(ctx, assignment, req.Plugin)
	if err != nil {
		return "", err
	}
	body, err := s.composer.SubmissionPluginView(ctx, assignment, p, submission, render.Full, req.ReturnAction)
	if err != nil {
		return "", err
	}
	return s.pluginPage(ctx, viewer, assignment, submission.UserID, p.Name(), body, req.ReturnAction)
}

func (s *viewService) feedbackPluginPage(ctx context.Context, viewer Viewer, assignment models.Assignment, req PageRequest) (template.HTML, error) {
	grade, err := s.store.Grades.GetByID(ctx, req.GradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrGradeNotFound
		}
		return "", err
	}
	if grade.AssignmentID != assignment.ID {
		return "", ErrGradeNotFound
	}
	if !viewer.CanSee(grade.UserID) || (grade.Hidden && !viewer.IsGrader()) {
		return "", ErrForbidden
	}

	p, err := s.registry.FeedbackPlugin(ctx, assignment, req.Plugin)
	if err != nil {
		return "", err
	}
	body, err := s.composer.FeedbackPluginView(ctx, assignment, p, grade, render.Full, req.ReturnAction)
	if err != nil {
		return "", err
	}
	return s.pluginPage(ctx, viewer, assignment, grade.UserID, p.Name(), body, req.ReturnAction)
}

func (s *viewService) pluginPage(ctx context.Context, viewer Viewer, assignment models.Assignment, userID uint, name string, body template.HTML, returnAction string) (template.HTML, error) {
	header, err := s.composer.Header(render.Header{Assignment: assignment, SubPage: name})
	if err != nil {
		return "", err
	}

	var userSummary template.HTML
	if viewer.IsGrader() {
		user, err := s.store.Users.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		if err == nil {
			if userSummary, err = s.composer.UserSummary(render.UserSummary{User: &user, CourseID: assignment.CourseID}); err != nil {
				return "", err
			}
		}
	}

	back, err := s.composer.BackLink(assignment, returnAction)
	if err != nil {
		return "", err
	}
	return s.composer.Page(header, userSummary, body, back)
}

func (s *viewService) Status(ctx context.Context, viewer Viewer, assignmentID, userID uint) (dto.SubmissionStatusResponse, error) {
	if userID == 0 {
		userID = viewer.UserID
	}
	if !viewer.CanSee(userID) {
		return dto.SubmissionStatusResponse{}, ErrForbidden
	}
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}
	state, err := s.loadState(ctx, assignment, userID)
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}

	remaining, tag := s.composer.TimeRemaining(assignment, state.submission)
	response := dto.SubmissionStatusResponse{
		AssignmentID:     assignment.ID,
		UserID:           userID,
		StatusText:       s.strings.Get("assign:submissionstatus_"),
		Locked:           state.locked(),
		Graded:           state.graded(),
		DueDate:          assignment.DueDate,
		TimeRemaining:    remaining,
		TimeRemainingTag: tag,
		CanEdit:          s.canEdit(viewer, state),
		Plugins:          []dto.PluginSummaryResponse{},
	}

	if sub := state.submission; sub != nil {
		modified := sub.TimeModified()
		response.SubmissionStatus = sub.Status
		response.StatusText = s.strings.Get("assign:submissionstatus_" + sub.Status)
		response.LastModified = &modified
		response.CanSubmit = viewer.UserID == userID && assignment.SubmissionDrafts && sub.Status == models.SubmissionStatusDraft && !state.locked()

		for _, p := range state.submissionPlugins {
			if !p.IsEnabled() {
				continue
			}
			body, err := p.ViewSummary(ctx, *sub)
			if err != nil {
				return dto.SubmissionStatusResponse{}, err
			}
			summary := dto.PluginSummaryResponse{Type: p.Type(), Name: p.Name(), Summary: string(body)}
			if p.ShowViewLink(ctx, *sub) {
				summary.ViewLink = s.composer.Links().Plugin(assignment.ID, p.Subtype(), p.Type(), sub.ID, ActionView)
			}
			response.Plugins = append(response.Plugins, summary)
		}
	}

	feedback, err := s.feedback(ctx, state)
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}
	response.Feedback = feedback
	return response, nil
}

// feedback mirrors FeedbackStatus: nothing when ungraded without feedback or hidden.
func (s *viewService) feedback(ctx context.Context, state userState) (*dto.FeedbackResponse, error) {
	grade := state.grade
	if grade == nil || grade.Hidden {
		return nil, nil
	}

	plugins := []dto.PluginSummaryResponse{}
	hasFeedback := false
	for _, p := range state.feedbackPlugins {
		if !p.IsEnabled() {
			continue
		}
		body, err := p.ViewSummary(ctx, *grade)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(body)) != "" {
			hasFeedback = true
		}
		summary := dto.PluginSummaryResponse{Type: p.Type(), Name: p.Name(), Summary: string(body)}
		if p.ShowViewLink(ctx, *grade) {
			summary.ViewLink = s.composer.Links().Plugin(state.assignment.ID, p.Subtype(), p.Type(), grade.ID, ActionView)
		}
		plugins = append(plugins, summary)
	}
	if !grade.IsGraded() && !hasFeedback {
		return nil, nil
	}

	response := &dto.FeedbackResponse{
		Grade:    s.composer.FormatGrade(grade.Grade, state.assignment, state.scale),
		GradedAt: grade.GradedAt,
		Plugins:  plugins,
	}
	if state.grader != nil {
		response.GradedBy = state.grader.FullName()
	}
	return response, nil
}

func (s *viewService) Files(ctx context.Context, viewer Viewer, assignmentID, userID uint, area string) (template.HTML, error) {
	if !viewer.CanSee(userID) {
		return "", ErrForbidden
	}
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return "", err
	}

	var fileArea repository.FileArea
	switch area {
	case models.FileAreaSubmissionFiles, models.FileAreaOnlineText:
		submission, err := s.store.Submissions.GetByAssignmentAndUser(ctx, assignment.ID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrSubmissionNotFound
			}
			return "", err
		}
		fileArea = submissionfile.Area(assignment.ID, submission.ID)
		if area == models.FileAreaOnlineText {
			fileArea.Component = models.ComponentSubmissionOnlineText
			fileArea.FileArea = models.FileAreaOnlineText
		}
	case models.FileAreaFeedbackFiles:
		grade, err := s.store.Grades.GetByAssignmentAndUser(ctx, assignment.ID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrGradeNotFound
			}
			return "", err
		}
		if grade.Hidden && !viewer.IsGrader() {
			return "", ErrForbidden
		}
		fileArea = feedbackfile.Area(assignment.ID, grade.ID)
	default:
		return "", ErrUnknownFileArea
	}

	return s.composer.AssignFiles(ctx, fileArea)
}

func (s *viewService) Summary(ctx context.Context, viewer Viewer, assignmentID uint) (SummaryCounts, error) {
	if !viewer.IsGrader() {
		return SummaryCounts{}, ErrForbidden
	}
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return SummaryCounts{}, err
	}
	return s.counts(ctx, assignment)
}

// counts reads the grading summary counters, through the cache when available.
func (s *viewService) counts(ctx context.Context, assignment models.Assignment) (SummaryCounts, error) {
	if cached, ok := s.cache.Get(ctx, assignment.ID); ok {
		return cached, nil
	}

	participants, err := s.store.Users.CountEnrolled(ctx, assignment.CourseID, models.RoleStudent)
	if err != nil {
		return SummaryCounts{}, err
	}
	drafts, err := s.store.Submissions.CountByStatus(ctx, assignment.ID, models.SubmissionStatusDraft)
	if err != nil {
		return SummaryCounts{}, err
	}
	submitted, err := s.store.Submissions.CountByStatus(ctx, assignment.ID, models.SubmissionStatusSubmitted)
	if err != nil {
		return SummaryCounts{}, err
	}

	counts := SummaryCounts{Participants: participants, Drafts: drafts, Submitted: submitted}
	s.cache.Set(ctx, assignment.ID, counts)
	return counts, nil
}

func (s *viewService) loadState(ctx context.Context, assignment models.Assignment, userID uint) (userState, error) {
	state := userState{assignment: assignment}

	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userState{}, ErrUserNotFound
		}
		return userState{}, err
	}
	state.user = user

	submission, err := s.store.Submissions.GetByAssignmentAndUser(ctx, assignment.ID, userID)
	switch {
	case err == nil:
		state.submission = &submission
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return userState{}, err
	}

	grade, err := s.store.Grades.GetByAssignmentAndUser(ctx, assignment.ID, userID)
	switch {
	case err == nil:
		state.grade = &grade
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return userState{}, err
	}

	if state.grade != nil && state.grade.GraderID != nil {
		grader, err := s.store.Users.GetByID(ctx, *state.grade.GraderID)
		if err == nil {
			state.grader = &grader
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return userState{}, err
		}
	}

	if state.scale, err = loadScale(ctx, s.store, assignment); err != nil {
		return userState{}, err
	}
	if state.submissionPlugins, err = s.registry.SubmissionPlugins(ctx, assignment); err != nil {
		return userState{}, err
	}
	if state.feedbackPlugins, err = s.registry.FeedbackPlugins(ctx, assignment); err != nil {
		return userState{}, err
	}
	return state, nil
}

// canEdit reports whether the viewer may change their own submission now.
func (s *viewService) canEdit(viewer Viewer, state userState) bool {
	if viewer.UserID != state.user.ID || state.locked() {
		return false
	}
	if !state.assignment.SubmissionsOpen(s.now()) || !render.AnyEnabled(state.submissionPlugins) {
		return false
	}
	if sub := state.submission; sub != nil && sub.IsSubmitted() && state.assignment.SubmissionDrafts {
		return false
	}
	return true
}
