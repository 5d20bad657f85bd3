package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence"
	"github.com/rezkam/taskboard/internal/ptr"
)

// seedTask is one fixture entry. DueDate wins over DueInDays; both may be
// omitted for a task without a due date. Past dates are allowed.
type seedTask struct {
	Title       string  `yaml:"title"`
	Description *string `yaml:"description"`
	Status      string  `yaml:"status"`
	DueDate     string  `yaml:"due_date"`
	DueInDays   *int    `yaml:"due_in_days"`
}

type seedFile struct {
	Tasks []seedTask `yaml:"tasks"`
}

// sampleTasks is the default demo data set.
var sampleTasks = []seedTask{
	{
		Title:       "Complete project documentation",
		Description: ptr.To("Write comprehensive documentation for the new task management system including user guide and technical specifications."),
		Status:      "in_progress",
		DueInDays:   ptr.To(3),
	},
	{
		Title:       "Review code changes",
		Description: ptr.To("Review pull requests from team members and provide feedback on the recent feature implementations."),
		Status:      "pending",
		DueInDays:   ptr.To(1),
	},
	{
		Title:       "Setup production environment",
		Description: ptr.To("Configure the production server, setup database, and deploy the application."),
		Status:      "pending",
		DueInDays:   ptr.To(7),
	},
	{
		Title:       "Bug fix: Login validation",
		Description: ptr.To("Fix the login form validation issue reported by QA team."),
		Status:      "completed",
		DueInDays:   ptr.To(-1),
	},
	{
		Title:       "Team meeting preparation",
		Description: ptr.To("Prepare agenda and materials for the upcoming team standup meeting."),
		Status:      "completed",
		DueInDays:   ptr.To(-2),
	},
	{
		Title:       "Database optimization",
		Description: ptr.To("Analyze and optimize database queries to improve application performance."),
		Status:      "pending",
		DueInDays:   ptr.To(10),
	},
	{
		Title:       "Client feedback implementation",
		Description: ptr.To("Implement changes based on client feedback from the last demo session."),
		Status:      "in_progress",
		DueInDays:   ptr.To(5),
	},
	{
		Title:       "Security audit",
		Description: ptr.To("Conduct a comprehensive security audit of the application."),
		Status:      "pending",
	},
}

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample tasks",
		Long: `Insert the built-in sample tasks, or the tasks listed in a YAML file:

  tasks:
    - title: Write release notes
      status: pending
      due_in_days: 2
    - title: Archive old tickets
      description: Older than a year
      status: completed
      due_date: "2024-06-30"

Tasks whose title already exists are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := sampleTasks
			if file != "" {
				loaded, err := loadSeedFile(file)
				if err != nil {
					return err
				}
				tasks = loaded
			}

			return a.withStore(cmd.Context(), false, func(store persistence.Store) error {
				created, skipped, err := seed(cmd.Context(), store, tasks, a.now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d task(s), skipped %d existing.\n", created, skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with tasks to insert")
	return cmd
}

func loadSeedFile(path string) ([]seedTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(f.Tasks) == 0 {
		return nil, errors.New("seed file lists no tasks")
	}
	return f.Tasks, nil
}

// toTask converts a fixture entry, resolving relative due dates against now.
func (s seedTask) toTask(now time.Time) (*domain.Task, error) {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return nil, errors.New("task title is required")
	}
	status := domain.TaskStatusPending
	if s.Status != "" {
		var err error
		if status, err = domain.NewTaskStatus(s.Status); err != nil {
			return nil, fmt.Errorf("task %q: %w", title, err)
		}
	}

	t := &domain.Task{Title: title, Description: s.Description, Status: status}
	switch {
	case s.DueDate != "":
		d, err := domain.ParseDate(s.DueDate)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", title, err)
		}
		t.DueDate = &d
	case s.DueInDays != nil:
		d := domain.StartOfDay(now.AddDate(0, 0, *s.DueInDays))
		t.DueDate = &d
	}
	return t, nil
}

// seed inserts tasks atomically, skipping titles already present.
func seed(ctx context.Context, store persistence.Store, tasks []seedTask, now time.Time) (created, skipped int, err error) {
	prepared := make([]*domain.Task, 0, len(tasks))
	for _, s := range tasks {
		t, err := s.toTask(now)
		if err != nil {
			return 0, 0, err
		}
		prepared = append(prepared, t)
	}

	err = store.Atomic(ctx, func(tx task.Repository) error {
		for _, t := range prepared {
			exists, err := tx.TitleExists(ctx, t.Title, 0)
			if err != nil {
				return err
			}
			if exists {
				skipped++
				continue
			}
			if _, err := tx.CreateTask(ctx, t); err != nil {
				return fmt.Errorf("failed to insert %q: %w", t.Title, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, skipped, nil
}
