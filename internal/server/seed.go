package server

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/repositories"
	"github.com/desertthunder/promo/internal/shared"
)

// DemoUser is the name of the account [Seed] creates.
const DemoUser = "Test McApp"

type seedRelease struct {
	title string
	kind  models.ReleaseType
	date  string
	about string
	tasks []seedTask
}

type seedTask struct {
	description string
	priority    models.TaskPriority
	status      models.TaskStatus
}

var demoReleases = []seedRelease{
	{
		title: "Night Drive", kind: models.EP, date: "2025-06-20",
		about: "Late night synth EP",
		tasks: []seedTask{
			{"Pitch to playlists", models.Urgent, models.InProgress},
			{"Post teaser clip", models.High, models.ToDo},
			{"Book release show", models.Medium, models.ToDo},
			{"Send press kit", models.Low, models.Done},
		},
	},
	{
		title: "Summer Static", kind: models.Single, date: "2025-08-01",
		tasks: []seedTask{
			{"Finalize artwork", models.High, models.Done},
			{"Schedule radio plugging", models.Medium, models.ToDo},
		},
	},
	{title: "Basement Tapes", kind: models.Mixtape, date: "2025-10-31"},
}

// Seed inserts the demo user with a few releases and tasks.
//
// It does nothing when the demo user already exists and returns that user.
func Seed(db *sql.DB) (*models.User, error) {
	users := repositories.NewUserRepository(db)
	releases := repositories.NewReleaseRepository(db)
	tasks := repositories.NewTaskRepository(db)

	existing, err := users.GetByName(DemoUser)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user := &models.User{Name: DemoUser}
	if err := users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to seed user: %w", err)
	}

	for _, sr := range demoReleases {
		date, err := models.ParseDate(sr.date)
		if err != nil {
			return nil, err
		}
		release := &models.Release{
			UserID:      user.UserID,
			Title:       sr.title,
			Type:        sr.kind,
			ReleaseDate: date,
			Description: sr.about,
		}
		if err := releases.Create(release); err != nil {
			return nil, fmt.Errorf("failed to seed release %q: %w", sr.title, err)
		}

		for _, st := range sr.tasks {
			task := &models.PromotionTask{
				ReleaseID:   release.ReleaseID,
				Status:      st.status,
				Priority:    st.priority,
				Description: st.description,
			}
			if err := tasks.Create(task); err != nil {
				return nil, fmt.Errorf("failed to seed task %q: %w", st.description, err)
			}
		}
	}

	return user, nil
}
