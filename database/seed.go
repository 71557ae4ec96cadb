package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/auth"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedConfig carries seed credentials. Accounts whose credentials are
// empty are skipped.
type SeedConfig struct {
	AdminName         string
	AdminEmail        string
	AdminPassword     string
	InstituteEmail    string
	InstitutePassword string
	SampleCatalog     bool
}

func SeedConfigFromEnv(cfg *config.EnvironmentVariable) *SeedConfig {
	return &SeedConfig{
		AdminName:         cfg.ADMIN_NAME,
		AdminEmail:        cfg.ADMIN_EMAIL,
		AdminPassword:     cfg.ADMIN_PASSWORD,
		InstituteEmail:    cfg.SEED_INSTITUTE_EMAIL,
		InstitutePassword: cfg.SEED_INSTITUTE_PASSWORD,
		SampleCatalog:     cfg.SEED_SAMPLE_DATA,
	}
}

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// SeedAll runs all seed functions and returns the names of those that
// inserted rows.
func (s *Seeder) SeedAll() ([]string, error) {
	var seeded []string

	created, err := s.SeedAdminUser()
	if err != nil {
		return seeded, fmt.Errorf("failed to seed admin user: %w", err)
	}
	if created {
		seeded = append(seeded, "admin_user")
	}

	created, err = s.SeedSampleCatalog()
	if err != nil {
		return seeded, fmt.Errorf("failed to seed sample catalog: %w", err)
	}
	if created {
		seeded = append(seeded, "sample_catalog")
	}

	return seeded, nil
}

// SeedAdminUser creates the admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
func (s *Seeder) SeedAdminUser() (bool, error) {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		log.Debug().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin user")
		return false, nil
	}

	var existing model.User
	err := s.db.Where("email = ?", s.cfg.AdminEmail).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	passwordHash, err := auth.HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	name := s.cfg.AdminName
	if name == "" {
		name = "Admin User"
	}
	admin := &model.User{
		Name:         name,
		Email:        s.cfg.AdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		IsVerified:   true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return false, err
	}

	log.Info().Str("email", admin.Email).Msg("created admin user")
	return true, nil
}

type sampleCourse struct {
	faculty      string
	name         string
	code         string
	description  string
	duration     int
	requirements string
	fees         string
	capacity     int
	deadline     time.Time
}

// SeedSampleCatalog creates a demo institute with faculties and courses.
// It runs only with SEED_SAMPLE_DATA and institute seed credentials set.
func (s *Seeder) SeedSampleCatalog() (bool, error) {
	if !s.cfg.SampleCatalog {
		return false, nil
	}
	if s.cfg.InstituteEmail == "" || s.cfg.InstitutePassword == "" {
		log.Warn().Msg("SEED_SAMPLE_DATA set without SEED_INSTITUTE_EMAIL/SEED_INSTITUTE_PASSWORD, skipping sample catalog")
		return false, nil
	}

	var count int64
	if err := s.db.Model(&model.Course{}).Where("code IN ?", []string{"CS101", "EE201", "BA301"}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	passwordHash, err := auth.HashPassword(s.cfg.InstitutePassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		user := model.User{}
		if err := tx.Where(model.User{Email: s.cfg.InstituteEmail}).
			Attrs(model.User{Name: "University Admin", PasswordHash: passwordHash, Role: model.RoleInstitute, IsVerified: true}).
			FirstOrCreate(&user).Error; err != nil {
			return err
		}
		if user.Role != model.RoleInstitute {
			return fmt.Errorf("seed institute email %s belongs to a %s account", user.Email, user.Role)
		}

		established := 1985
		institute := model.Institute{}
		if err := tx.Where(model.Institute{UserID: user.ID}).
			Attrs(model.Institute{
				Name:            "University of Technology",
				Description:     "Premier institution for engineering and technology education",
				Location:        "New York",
				ContactEmail:    "info@unitech.edu",
				ContactPhone:    "+1-555-0123",
				Website:         "https://unitech.edu",
				EstablishedYear: &established,
				TotalStudents:   15000,
				Address:         "123 Tech Avenue, New York, NY 10001",
			}).
			FirstOrCreate(&institute).Error; err != nil {
			return err
		}

		faculties := map[string]*model.Faculty{}
		for _, f := range []model.Faculty{
			{Name: "Faculty of Engineering", Description: "Leading engineering faculty with state-of-the-art facilities", DeanName: "Dr. John Smith", ContactEmail: "engineering@unitech.edu", ContactPhone: "+1-555-0124", EstablishedYear: intPtr(1985)},
			{Name: "Faculty of Computer Science", Description: "Innovative computer science programs and research", DeanName: "Dr. Sarah Johnson", ContactEmail: "cs@unitech.edu", ContactPhone: "+1-555-0125", EstablishedYear: intPtr(1995)},
			{Name: "Faculty of Business Administration", Description: "Business and management education excellence", DeanName: "Dr. Michael Brown", ContactEmail: "business@unitech.edu", ContactPhone: "+1-555-0126", EstablishedYear: intPtr(1990)},
		} {
			faculty := model.Faculty{}
			if err := tx.Where(model.Faculty{InstituteID: institute.ID, Name: f.Name}).Attrs(f).FirstOrCreate(&faculty).Error; err != nil {
				return err
			}
			faculties[faculty.Name] = &faculty
		}

		courses := []sampleCourse{
			{
				faculty: "Faculty of Computer Science", name: "Computer Science Bachelor", code: "CS101",
				description: "Comprehensive computer science program", duration: 4,
				requirements: `{"minGrade": "B", "requiredSubjects": ["Mathematics", "Physics"], "minGPA": 3.0, "entranceExam": true}`,
				fees:         `{"domestic": 5000, "international": 15000}`,
				capacity:     100, deadline: time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC),
			},
			{
				faculty: "Faculty of Engineering", name: "Electrical Engineering", code: "EE201",
				description: "Electrical engineering program", duration: 4,
				requirements: `{"minGrade": "B-", "requiredSubjects": ["Mathematics", "Physics", "Chemistry"], "minGPA": 2.8, "entranceExam": true}`,
				fees:         `{"domestic": 5500, "international": 16000}`,
				capacity:     80, deadline: time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC),
			},
			{
				faculty: "Faculty of Business Administration", name: "Business Administration", code: "BA301",
				description: "Business management program", duration: 3,
				requirements: `{"minGrade": "C+", "requiredSubjects": ["Mathematics", "English"], "minGPA": 2.5, "entranceExam": false}`,
				fees:         `{"domestic": 4500, "international": 12000}`,
				capacity:     120, deadline: time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
			},
		}

		for _, c := range courses {
			deadline := c.deadline
			course := model.Course{}
			if err := tx.Where(model.Course{Code: c.code}).Attrs(model.Course{
				FacultyID:           faculties[c.faculty].ID,
				Name:                c.name,
				Description:         c.description,
				Duration:            c.duration,
				DurationUnit:        model.DurationYears,
				Requirements:        datatypes.JSON(c.requirements),
				Fees:                datatypes.JSON(c.fees),
				IntakeCapacity:      c.capacity,
				ApplicationDeadline: &deadline,
				IsActive:            true,
			}).FirstOrCreate(&course).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	log.Info().Str("institute_email", s.cfg.InstituteEmail).Msg("seeded sample catalog")
	return true, nil
}

func intPtr(v int) *int {
	return &v
}
