package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/feedesk-backend/internal/config"
	"github.com/stemsi/feedesk-backend/internal/database"
	"github.com/stemsi/feedesk-backend/internal/logger"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/repository"
	"github.com/stemsi/feedesk-backend/internal/service"
)

var subjects = []struct {
	code, name string
	fee        model.RawMoney
}{
	{"MATH", "Mathematics", "1200"},
	{"SCI", "Science", "1000"},
	{"ENG", "English", "850"},
	{"ICT", "Information Technology", "1500"},
	{"HIS", "History", "750"},
}

var names = []string{
	"Amara Perera", "Bimal Silva", "Chathuri Fernando", "Dinuka Jayasuriya", "Eshani Wickramasinghe",
	"Farhan Ismail", "Gayathri Rajapaksa", "Hasitha Bandara", "Isuri Gunawardena", "Janith Dissanayake",
	"Kavindi Herath", "Lahiru Kumara", "Malsha Senanayake", "Nuwan Pathirana", "Oshadi Karunaratne",
	"Pasan Liyanage", "Rashmi Weerasinghe", "Sahan Abeysekera", "Tharushi Mendis", "Udara Samarasinghe",
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Seeding bypasses the cache; the server invalidates on its own writes only,
	// so restart it or wait CATALOG_CACHE_TTL after seeding.
	studentService := service.NewStudentService(repository.NewStudentRepository(pool), nil, 0, log)
	subjectService := service.NewSubjectService(repository.NewSubjectRepository(pool), nil, 0, log)

	fmt.Printf("=== Seeding %d subjects ===\n", len(subjects))
	added := 0
	for _, s := range subjects {
		_, err := subjectService.Create(ctx, s.code, s.name, s.fee)
		switch {
		case errors.Is(err, service.ErrDuplicateKey):
			fmt.Printf("Subject %s already exists, skipped\n", s.code)
		case err != nil:
			log.Fatal().Err(err).Str("subject_code", s.code).Msg("Failed to seed subject")
		default:
			added++
		}
	}
	fmt.Printf("Added %d/%d subjects\n", added, len(subjects))

	fmt.Printf("=== Seeding %d students ===\n", len(names))
	added = 0
	for i, name := range names {
		student := &model.Student{
			SID:          fmt.Sprintf("%04d", i+1),
			StudentName:  name,
			StudentGrade: fmt.Sprintf("%d", 6+i%6),
		}
		err := studentService.Create(ctx, student)
		switch {
		case errors.Is(err, service.ErrDuplicateKey):
			fmt.Printf("Student %s already exists, skipped\n", student.SID)
		case err != nil:
			fmt.Printf("Error creating student %s (SID: %s): %v\n", student.StudentName, student.SID, err)
		default:
			added++
		}
	}

	fmt.Printf("\nSeed completed! Added %d/%d students.\n", added, len(names))
}
