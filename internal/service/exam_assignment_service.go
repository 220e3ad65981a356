package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/dto"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/repository"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/scheduling"
	appErrors "github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type examLocker interface {
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Exam, error)
	ListByProctorsOnDate(ctx context.Context, exec sqlx.ExtContext, proctorIDs []string, date time.Time, excludeExamID string) ([]models.ProctorBooking, error)
}

type roomReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Room, error)
}

type registrationStore interface {
	CountActive(ctx context.Context, exec sqlx.ExtContext, examID string) (int, error)
	ListStudentIDs(ctx context.Context, exec sqlx.ExtContext, examID string, statuses []models.RegistrationStatus) ([]string, error)
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, registrations []models.Registration) error
}

type proctorAssignmentStore interface {
	ListProctorIDs(ctx context.Context, exec sqlx.ExtContext, examID string) ([]string, error)
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.ProctorAssignment) error
}

type userDirectory interface {
	ListByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string, role models.UserRole) ([]models.User, error)
}

type changeNotifier interface {
	Notify(ctx context.Context, resource, action string, payload interface{}, actor string)
}

type assignmentRecorder interface {
	RecordAssignment(kind, outcome string)
}

const (
	assignmentKindStudents = "students"
	assignmentKindProctors = "proctors"

	resourceExamRegistrations = "exam_registrations"
	resourceExamProctors      = "exam_proctors"
)

// ExamAssignmentService validates and commits student registrations and proctor assignments.
type ExamAssignmentService struct {
	exams         examLocker
	rooms         roomReader
	registrations registrationStore
	proctors      proctorAssignmentStore
	users         userDirectory
	tx            txProvider
	notifier      changeNotifier
	metrics       assignmentRecorder
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewExamAssignmentService wires assignment dependencies. notifier and metrics may be nil.
func NewExamAssignmentService(
	exams examLocker,
	rooms roomReader,
	registrations registrationStore,
	proctors proctorAssignmentStore,
	users userDirectory,
	tx txProvider,
	notifier changeNotifier,
	metrics assignmentRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
) *ExamAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamAssignmentService{
		exams:         exams,
		rooms:         rooms,
		registrations: registrations,
		proctors:      proctors,
		users:         users,
		tx:            tx,
		notifier:      notifier,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
	}
}

// AssignStudents registers students for an exam. The whole batch is rejected when the new
// students do not fit in the remaining seats; students already registered are reported, not
// re-inserted.
func (s *ExamAssignmentService) AssignStudents(ctx context.Context, examID string, req dto.AssignStudentsRequest, actor string) (result *models.AssignmentResult, err error) {
	defer func() { s.record(assignmentKindStudents, err) }()

	examID = strings.TrimSpace(examID)
	if examID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student assignment payload")
	}
	requested := scheduling.Dedupe(req.StudentIDs)
	if len(requested) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_ids must contain at least one id")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Store(err, "failed to begin assignment transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exam, err := s.lockExam(ctx, tx, examID)
	if err != nil {
		return nil, err
	}
	if err = s.ensureUsers(ctx, tx, requested, models.RoleStudent, "student"); err != nil {
		return nil, err
	}

	existing, err := s.registrations.ListStudentIDs(ctx, tx, exam.ID, models.ActiveRegistrationStatuses)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load exam registrations")
	}
	fresh, already := scheduling.Partition(requested, existing)

	var warnings []string
	if len(fresh) > 0 {
		var active int
		if active, err = s.ensureSeats(ctx, tx, exam, len(fresh)); err != nil {
			return nil, err
		}
		if warnings, err = s.roomOverflow(ctx, tx, exam, active+len(fresh)); err != nil {
			return nil, err
		}

		registrations := make([]models.Registration, 0, len(fresh))
		for _, studentID := range fresh {
			registrations = append(registrations, models.Registration{
				ExamID:    exam.ID,
				StudentID: studentID,
				Status:    models.RegistrationStatusApproved,
			})
		}
		if err = s.registrations.CreateBatch(ctx, tx, registrations); err != nil {
			return nil, s.storeError(err, "failed to create exam registrations")
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Store(err, "failed to commit student assignment")
	}

	result = &models.AssignmentResult{
		ExamID:             exam.ID,
		Created:            len(fresh),
		AlreadyAssigned:    len(already),
		TotalRequested:     len(requested),
		CreatedIDs:         fresh,
		AlreadyAssignedIDs: already,
		Warnings:           warnings,
	}
	for _, w := range warnings {
		s.logger.Warn("exam registrations exceed room capacity", zap.String("exam_id", exam.ID), zap.String("warning", w))
	}
	s.logger.Info("students assigned to exam",
		zap.String("exam_id", exam.ID),
		zap.Int("created", result.Created),
		zap.Int("already_registered", result.AlreadyAssigned),
		zap.String("actor", actor),
	)
	if len(fresh) > 0 {
		s.notify(ctx, resourceExamRegistrations, "created", map[string]interface{}{
			"exam_id":     exam.ID,
			"student_ids": fresh,
		}, actor)
	}
	return result, nil
}

// AssignProctors assigns proctors to an exam. If any new proctor already covers an overlapping
// exam on the same date the whole batch is rejected with the conflicting exams listed.
func (s *ExamAssignmentService) AssignProctors(ctx context.Context, examID string, req dto.AssignProctorsRequest, actor string) (result *models.AssignmentResult, err error) {
	defer func() { s.record(assignmentKindProctors, err) }()

	examID = strings.TrimSpace(examID)
	if examID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proctor assignment payload")
	}

	roles := make(map[string]models.ProctorRole, len(req.Proctors))
	ids := make([]string, 0, len(req.Proctors))
	for _, input := range req.Proctors {
		id := strings.TrimSpace(input.ProctorID)
		if _, seen := roles[id]; seen || id == "" {
			continue
		}
		role := models.ProctorRole(input.Role)
		if role == "" {
			role = models.ProctorRoleAssistant
		}
		roles[id] = role
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proctors must contain at least one proctor_id")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Store(err, "failed to begin assignment transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exam, err := s.lockExam(ctx, tx, examID)
	if err != nil {
		return nil, err
	}
	proctors, err := s.users.ListByIDs(ctx, tx, ids, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load proctors")
	}
	if err = missingUsers(ids, proctors, "proctor"); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(proctors))
	for _, p := range proctors {
		names[p.ID] = p.FullName
	}

	existing, err := s.proctors.ListProctorIDs(ctx, tx, exam.ID)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load exam proctors")
	}
	fresh, already := scheduling.Partition(ids, existing)

	if len(fresh) > 0 {
		if err = s.ensureProctorsFree(ctx, tx, exam, fresh, names); err != nil {
			return nil, err
		}

		assignments := make([]models.ProctorAssignment, 0, len(fresh))
		for _, proctorID := range fresh {
			assignments = append(assignments, models.ProctorAssignment{
				ExamID:    exam.ID,
				ProctorID: proctorID,
				Role:      roles[proctorID],
			})
		}
		if err = s.proctors.CreateBatch(ctx, tx, assignments); err != nil {
			return nil, s.storeError(err, "failed to create exam proctors")
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Store(err, "failed to commit proctor assignment")
	}

	result = &models.AssignmentResult{
		ExamID:             exam.ID,
		Created:            len(fresh),
		AlreadyAssigned:    len(already),
		TotalRequested:     len(ids),
		CreatedIDs:         fresh,
		AlreadyAssignedIDs: already,
	}
	s.logger.Info("proctors assigned to exam",
		zap.String("exam_id", exam.ID),
		zap.Int("created", result.Created),
		zap.Int("already_assigned", result.AlreadyAssigned),
		zap.String("actor", actor),
	)
	if len(fresh) > 0 {
		s.notify(ctx, resourceExamProctors, "created", map[string]interface{}{
			"exam_id":     exam.ID,
			"proctor_ids": fresh,
		}, actor)
	}
	return result, nil
}

func (s *ExamAssignmentService) lockExam(ctx context.Context, exec sqlx.ExtContext, examID string) (*models.Exam, error) {
	exam, err := s.exams.FindByIDForUpdate(ctx, exec, examID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("exam %s not found", examID))
		}
		return nil, appErrors.Store(err, "failed to load exam")
	}
	if !exam.Status.Active() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("exam %q is cancelled and cannot take assignments", exam.Title))
	}
	return exam, nil
}

func (s *ExamAssignmentService) ensureUsers(ctx context.Context, exec sqlx.ExtContext, ids []string, role models.UserRole, label string) error {
	users, err := s.users.ListByIDs(ctx, exec, ids, role)
	if err != nil {
		return appErrors.Store(err, fmt.Sprintf("failed to load %ss", label))
	}
	return missingUsers(ids, users, label)
}

func missingUsers(ids []string, found []models.User, label string) error {
	present := make(map[string]struct{}, len(found))
	for _, u := range found {
		present[u.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	notFound := appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found: %s", label, strings.Join(missing, ", ")))
	return appErrors.WithDetails(notFound, map[string]interface{}{"missing_ids": missing})
}

// ensureSeats rejects the batch when requested new registrations exceed the exam's free seats.
// Room size does not gate admission; see roomOverflow.
func (s *ExamAssignmentService) ensureSeats(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam, requested int) (int, error) {
	active, err := s.registrations.CountActive(ctx, exec, exam.ID)
	if err != nil {
		return 0, appErrors.Store(err, "failed to count exam registrations")
	}

	available := exam.MaxStudents - active
	if available < 0 {
		available = 0
	}
	if requested <= available {
		return active, nil
	}

	message := fmt.Sprintf("exam %q has %d of %d seats available; %d new students requested", exam.Title, available, exam.MaxStudents, requested)
	return active, appErrors.WithDetails(appErrors.Clone(appErrors.ErrCapacityExceeded, message), models.CapacityExceeded{
		ExamID:     exam.ID,
		Capacity:   exam.MaxStudents,
		Registered: active,
		Available:  available,
		Requested:  requested,
	})
}

// roomOverflow returns a warning when the exam's registrations will no longer fit its room.
// The batch is still committed; the conflict report flags the exam as overcapacity.
func (s *ExamAssignmentService) roomOverflow(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam, registered int) ([]string, error) {
	if !exam.HasRoom() {
		return nil, nil
	}
	room, err := s.rooms.FindByID(ctx, exec, *exam.RoomID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Warn("exam room not found", zap.String("exam_id", exam.ID), zap.String("room_id", *exam.RoomID))
			return nil, nil
		}
		return nil, appErrors.Store(err, "failed to load exam room")
	}
	if registered <= room.Capacity {
		return nil, nil
	}
	return []string{fmt.Sprintf("room %s holds %d students; exam %q now has %d registered", room.Name, room.Capacity, exam.Title, registered)}, nil
}

// ensureProctorsFree rejects the batch if any proctor already covers an overlapping exam.
func (s *ExamAssignmentService) ensureProctorsFree(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam, proctorIDs []string, names map[string]string) error {
	candidate, err := scheduling.ExamInterval("", *exam)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("exam %q has an invalid time range", exam.Title))
	}

	bookings, err := s.exams.ListByProctorsOnDate(ctx, exec, proctorIDs, exam.ExamDate, exam.ID)
	if err != nil {
		return appErrors.Store(err, "failed to load proctor schedules")
	}

	occupied := make(map[string][]scheduling.Interval, len(proctorIDs))
	booked := make(map[string]models.ProctorBooking, len(bookings))
	for _, b := range bookings {
		if !b.Status.Active() {
			continue
		}
		iv, ivErr := scheduling.NewInterval(b.ProctorID, b.ExamID, b.ExamDate, b.StartTime, b.EndTime)
		if ivErr != nil {
			s.logger.Warn("skipping proctor booking with invalid time range",
				zap.String("proctor_id", b.ProctorID),
				zap.String("exam_id", b.ExamID),
				zap.Error(ivErr),
			)
			continue
		}
		occupied[b.ProctorID] = append(occupied[b.ProctorID], iv)
		booked[b.ExamID] = b
	}

	var conflicts []models.ProctorConflict
	var parts []string
	for _, proctorID := range proctorIDs {
		hits := scheduling.Conflicting(candidate.On(proctorID), occupied[proctorID])
		if len(hits) == 0 {
			continue
		}
		conflict := models.ProctorConflict{ProctorID: proctorID, ProctorName: names[proctorID]}
		titles := make([]string, 0, len(hits))
		for _, hit := range hits {
			b := booked[hit.ExamID]
			conflict.ConflictingExams = append(conflict.ConflictingExams, models.FindingExam{
				ExamID:    b.ExamID,
				Title:     b.Title,
				Date:      b.ExamDate.Format(models.DateLayout),
				StartTime: b.StartTime,
				EndTime:   b.EndTime,
			})
			titles = append(titles, fmt.Sprintf("%q (%s %s-%s, id %s)", b.Title, b.ExamDate.Format(models.DateLayout), b.StartTime, b.EndTime, b.ExamID))
		}
		conflicts = append(conflicts, conflict)
		label := names[proctorID]
		if label == "" {
			label = proctorID
		}
		parts = append(parts, fmt.Sprintf("proctor %s is already assigned to %s", label, strings.Join(titles, ", ")))
	}
	if len(conflicts) == 0 {
		return nil
	}

	domainErr := &models.ProctorConflictError{
		Message: fmt.Sprintf("cannot assign proctors to %q: %s", exam.Title, strings.Join(parts, "; ")),
		Exam: models.FindingExam{
			ExamID:    exam.ID,
			Title:     exam.Title,
			Date:      exam.DateKey(),
			StartTime: exam.StartTime,
			EndTime:   exam.EndTime,
		},
		Conflicts: conflicts,
	}
	wrapped := appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
	return appErrors.WithDetails(wrapped, domainErr)
}

// storeError maps a unique-constraint race into a conflict and everything else into a
// retryable store error.
func (s *ExamAssignmentService) storeError(err error, message string) error {
	if repository.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
			"assignment changed concurrently, retry the request")
	}
	return appErrors.Store(err, message)
}

func (s *ExamAssignmentService) notify(ctx context.Context, resource, action string, payload interface{}, actor string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, resource, action, payload, actor)
}

func (s *ExamAssignmentService) record(kind string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAssignment(kind, assignmentOutcome(err))
}

func assignmentOutcome(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(appErrors.FromError(err).Code)
}
