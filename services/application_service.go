package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCourseNotFound          = errors.New("course not found")
	ErrAdmissionPeriodNotFound = errors.New("admission period not found for this institute")
	ErrDuplicateApplication    = errors.New("you have already applied to this course for this admission period")
	ErrApplicationNotFound     = errors.New("application not found")
	ErrInvalidTransition       = errors.New("application status does not allow this change")
)

// ApplyInput is a student's application request
type ApplyInput struct {
	StudentID         uint
	CourseID          uint
	AdmissionPeriodID *uint
	PreferredMajor    string
	PersonalStatement string
}

// ApplicationService implements the application lifecycle
type ApplicationService struct {
	store database.Storage
	now   func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(store database.Storage) *ApplicationService {
	return &ApplicationService{store: store, now: time.Now}
}

// Apply creates a pending application. The institute is derived from the
// course. Applications of one student are serialized by locking the student
// row, which also covers the NULL admission period case the unique index
// cannot enforce.
func (s *ApplicationService) Apply(ctx context.Context, in ApplyInput) (*model.Application, error) {
	db, err := s.store.Conn()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	var application model.Application
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&student, in.StudentID).Error; err != nil {
			return err
		}

		var course model.Course
		if err := tx.Preload("Faculty").First(&course, in.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if course.Faculty == nil {
			return ErrCourseNotFound
		}
		instituteID := course.Faculty.InstituteID

		if in.AdmissionPeriodID != nil {
			var period model.AdmissionPeriod
			err := tx.Where("id = ? AND institute_id = ?", *in.AdmissionPeriodID, instituteID).First(&period).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAdmissionPeriodNotFound
				}
				return err
			}
		}

		dup := tx.Model(&model.Application{}).Where("student_id = ? AND course_id = ?", in.StudentID, in.CourseID)
		if in.AdmissionPeriodID == nil {
			dup = dup.Where("admission_period_id IS NULL")
		} else {
			dup = dup.Where("admission_period_id = ?", *in.AdmissionPeriodID)
		}
		var count int64
		if err := dup.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateApplication
		}

		application = model.Application{
			StudentID:         in.StudentID,
			CourseID:          in.CourseID,
			InstituteID:       instituteID,
			AdmissionPeriodID: in.AdmissionPeriodID,
			PreferredMajor:    in.PreferredMajor,
			PersonalStatement: in.PersonalStatement,
			Status:            model.ApplicationPending,
			ApplicationDate:   now,
		}
		if err := tx.Create(&application).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateApplication
			}
			return err
		}

		if in.AdmissionPeriodID != nil {
			if err := tx.Model(&model.AdmissionPeriod{}).
				Where("id = ?", *in.AdmissionPeriodID).
				UpdateColumn("total_applications", gorm.Expr("total_applications + ?", 1)).Error; err != nil {
				return err
			}
		}

		return recordInstituteApplication(tx, in.StudentID, instituteID, in.CourseID, now)
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// recordInstituteApplication bumps the per-institute, per-academic-year
// counter and remembers which course was applied to.
func recordInstituteApplication(tx *gorm.DB, studentID, instituteID, courseID uint, now time.Time) error {
	year := model.AcademicYear(now)

	var counter model.StudentInstituteApplication
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND institute_id = ? AND academic_year = ?", studentID, instituteID, year).
		First(&counter).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		courses, _ := json.Marshal([]uint{courseID})
		counter = model.StudentInstituteApplication{
			StudentID:        studentID,
			InstituteID:      instituteID,
			AcademicYear:     year,
			ApplicationCount: 1,
			CoursesApplied:   datatypes.JSON(courses),
		}
		return tx.Create(&counter).Error
	case err != nil:
		return err
	}

	var courses []uint
	if len(counter.CoursesApplied) > 0 {
		if err := json.Unmarshal(counter.CoursesApplied, &courses); err != nil {
			return fmt.Errorf("invalid courses_applied for counter %d: %w", counter.ID, err)
		}
	}
	if !containsUint(courses, courseID) {
		courses = append(courses, courseID)
	}
	encoded, _ := json.Marshal(courses)

	return tx.Model(&counter).Updates(map[string]interface{}{
		"application_count": gorm.Expr("application_count + ?", 1),
		"courses_applied":   datatypes.JSON(encoded),
	}).Error
}

func containsUint(values []uint, v uint) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// ForStudent loads one application owned by the student.
func (s *ApplicationService) ForStudent(ctx context.Context, studentID, applicationID uint) (*model.Application, error) {
	db, err := s.store.Conn()
	if err != nil {
		return nil, err
	}

	var application model.Application
	err = db.WithContext(ctx).
		Preload("Course").
		Preload("Institute").
		Preload("AdmissionPeriod").
		Where("id = ? AND student_id = ?", applicationID, studentID).
		First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	return &application, err
}

// Withdraw moves a pending or under review application to withdrawn.
func (s *ApplicationService) Withdraw(ctx context.Context, studentID, applicationID uint) (*model.Application, error) {
	application, err := s.ForStudent(ctx, studentID, applicationID)
	if err != nil {
		return nil, err
	}
	if !application.CanWithdraw() {
		return nil, ErrInvalidTransition
	}

	db, err := s.store.Conn()
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(application).Update("status", model.ApplicationWithdrawn).Error; err != nil {
		return nil, err
	}
	return application, nil
}

// Delete removes a student's own application while it is still pending.
func (s *ApplicationService) Delete(ctx context.Context, studentID, applicationID uint) error {
	application, err := s.ForStudent(ctx, studentID, applicationID)
	if err != nil {
		return err
	}
	if application.Status != model.ApplicationPending {
		return ErrInvalidTransition
	}

	db, err := s.store.Conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Application{}, application.ID).Error; err != nil {
			return err
		}
		if application.AdmissionPeriodID != nil {
			return tx.Model(&model.AdmissionPeriod{}).
				Where("id = ? AND total_applications > 0", *application.AdmissionPeriodID).
				UpdateColumn("total_applications", gorm.Expr("total_applications - ?", 1)).Error
		}
		return nil
	})
}

// Review sets the status an institute decided on.
func (s *ApplicationService) Review(ctx context.Context, instituteID, applicationID uint, status, notes string) (*model.Application, error) {
	if !model.IsReviewStatus(status) {
		return nil, ErrInvalidTransition
	}

	db, err := s.store.Conn()
	if err != nil {
		return nil, err
	}

	var application model.Application
	err = db.WithContext(ctx).
		Where("id = ? AND institute_id = ?", applicationID, instituteID).
		First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	if application.Status == model.ApplicationWithdrawn {
		return nil, ErrInvalidTransition
	}

	reviewedAt := s.now().UTC()
	if err := db.WithContext(ctx).Model(&application).Updates(map[string]interface{}{
		"status":       status,
		"review_notes": notes,
		"reviewed_at":  reviewedAt,
	}).Error; err != nil {
		return nil, err
	}

	application.Status = status
	application.ReviewNotes = notes
	application.ReviewedAt = &reviewedAt
	return &application, nil
}

// AttachDocument appends an uploaded document to the application.
func (s *ApplicationService) AttachDocument(ctx context.Context, application *model.Application, doc model.ApplicationDocument) error {
	db, err := s.store.Conn()
	if err != nil {
		return err
	}

	var docs []model.ApplicationDocument
	if len(application.Documents) > 0 {
		if err := json.Unmarshal(application.Documents, &docs); err != nil {
			return fmt.Errorf("invalid documents for application %d: %w", application.ID, err)
		}
	}
	docs = append(docs, doc)

	encoded, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	application.Documents = datatypes.JSON(encoded)
	return db.WithContext(ctx).Model(application).Update("documents", application.Documents).Error
}
