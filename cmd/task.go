package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/revqdev/revq/internal/models"
	"github.com/revqdev/revq/internal/output"
	"github.com/revqdev/revq/internal/render"
	"github.com/revqdev/revq/internal/store"
	"github.com/revqdev/revq/internal/tasks"
)

var (
	taskTitle     string
	taskDesc      string
	taskSeverity  string
	taskCategory  string
	taskFile      string
	taskStartLine int
	taskEndLine   int
	taskPatch     string
	taskStatus    string
	taskLimit     int
	taskNote      string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage remediation tasks",
	Long:  "Track remediation tasks through their pending / in_progress / completed / cancelled lifecycle.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task manually",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAddRun()
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskShowRun(args[0])
	},
}

var taskExecuteCmd = &cobra.Command{
	Use:   "execute <task-id>",
	Short: "Start working on a task",
	Long: `Move a task to in_progress. Executing an in_progress task again is
allowed. A completed task is left untouched; a cancelled task must be
reactivated with 'task update --status pending' first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskExecuteRun(args[0])
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark an in_progress task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskCompleteRun(args[0])
	},
}

var taskVerifyCmd = &cobra.Command{
	Use:   "verify <task-id>",
	Short: "Show an in_progress task for verification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskVerifyRun(args[0])
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update task fields directly",
	Long: `Update task fields without lifecycle guards. --status is the manual
escape hatch: it accepts any status, including un-cancelling.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskUpdateRun(args[0])
	},
}

var taskCancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Cancel a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskCancelRun(args[0])
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <task-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskDeleteRun(args[0])
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskSeverity, "severity", "suggestion", "Severity: critical, required, suggestion, nit, good")
	taskAddCmd.Flags().StringVar(&taskCategory, "category", "", "Quality dimension: correctness, readability, simplicity, coupling, testability")
	taskAddCmd.Flags().StringVar(&taskFile, "file", "", "File path the task refers to")
	taskAddCmd.Flags().IntVar(&taskStartLine, "start-line", 0, "First affected line")
	taskAddCmd.Flags().IntVar(&taskEndLine, "end-line", 0, "Last affected line")
	taskAddCmd.Flags().StringVar(&taskPatch, "patch", "", "Suggested patch text")
	_ = taskAddCmd.MarkFlagRequired("title")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status: pending, in_progress, completed, cancelled")
	taskListCmd.Flags().IntVar(&taskLimit, "limit", 0, "Maximum tasks to list")

	taskCompleteCmd.Flags().StringVar(&taskNote, "note", "", "Verification note stored with completion")

	taskUpdateCmd.Flags().StringVar(&taskStatus, "status", "", "New status (unguarded)")
	taskUpdateCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskUpdateCmd.Flags().StringVar(&taskDesc, "desc", "", "New description")
	taskUpdateCmd.Flags().StringVar(&taskSeverity, "severity", "", "New severity")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskExecuteCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskVerifyCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskCancelCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}

func taskAddRun() error {
	if !models.EvaluationLabel(taskSeverity).Valid() {
		return fmt.Errorf("unknown severity %q", taskSeverity)
	}
	if taskCategory != "" && !models.Dimension(taskCategory).Valid() {
		return fmt.Errorf("unknown category %q", taskCategory)
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	t := &models.Task{
		Status:              models.TaskStatusPending,
		Title:               taskTitle,
		Description:         taskDesc,
		File:                taskFile,
		StartLine:           taskStartLine,
		EndLine:             taskEndLine,
		Severity:            models.EvaluationLabel(taskSeverity),
		Category:            models.Dimension(taskCategory),
		SuggestionPatchDiff: taskPatch,
	}

	if dryRun {
		ui.DryRunMsg("Would add task: %s [%s]", taskTitle, taskSeverity)
		return nil
	}

	if err := s.CreateTask(ctx, t); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	ui.Success("Created task %s: %s", output.Cyan(t.ID), t.Title)
	return nil
}

func taskListRun() error {
	if taskStatus != "" && !models.TaskStatus(taskStatus).Valid() {
		return fmt.Errorf("unknown status %q", taskStatus)
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	limit := taskLimit
	if limit <= 0 {
		limit = viper.GetInt("list.limit")
	}

	list, err := s.ListTasks(ctx, store.TaskFilter{
		Status: models.TaskStatus(taskStatus),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	if len(list) == 0 {
		ui.Info("No tasks found.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Status", "Severity", "Category", "Source"})
	for _, t := range list {
		source := ""
		if t.FromReview() {
			source = fmt.Sprintf("%s#%d", shortID(t.SourceReviewID), *t.SourceFindingIndex)
		}
		_ = table.Append([]string{
			t.ID,
			t.Title,
			output.StatusColor(string(t.Status)),
			output.SeverityColor(string(t.Severity)),
			string(t.Category),
			source,
		})
	}
	_ = table.Render()
	return nil
}

func taskShowRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	t, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	fmt.Fprint(ui.Out, render.TaskReport(t))
	return nil
}

func taskExecuteRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	s, _ := getStore()
	ctx := context.Background()

	t, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would execute task %s", shortID(t.ID))
		return nil
	}

	t, alreadyDone, err := svc.Execute(ctx, t.ID)
	if err != nil {
		return err
	}
	if alreadyDone {
		ui.Info("Task %s is already completed; nothing to do.", shortID(t.ID))
		return nil
	}

	ui.Success("Task %s is now %s", output.Cyan(shortID(t.ID)), output.StatusColor(string(t.Status)))
	return nil
}

func taskCompleteRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	s, _ := getStore()
	ctx := context.Background()

	t, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would complete task %s", shortID(t.ID))
		return nil
	}

	t, alreadyDone, err := svc.Complete(ctx, t.ID, taskNote)
	if err != nil {
		return err
	}
	if alreadyDone {
		ui.Info("Task %s was already completed at %s.", shortID(t.ID), t.CompletedAt.Format("2006-01-02 15:04"))
		return nil
	}

	ui.Success("Completed task %s", output.Cyan(shortID(t.ID)))
	return nil
}

func taskVerifyRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	s, _ := getStore()
	ctx := context.Background()

	t, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	t, err = svc.Verify(ctx, t.ID)
	if err != nil {
		if errors.Is(err, tasks.ErrInvalidState) {
			ui.Warning("%v", err)
			return nil
		}
		return err
	}

	fmt.Fprint(ui.Out, render.TaskReport(t))
	return nil
}

func taskUpdateRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	s, _ := getStore()
	ctx := context.Background()

	t, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	upd := store.TaskUpdate{}
	changed := false
	if taskStatus != "" {
		if !models.TaskStatus(taskStatus).Valid() {
			return fmt.Errorf("unknown status %q", taskStatus)
		}
		status := models.TaskStatus(taskStatus)
		upd.Status = &status
		changed = true
	}
	if taskTitle != "" {
		upd.Title = &taskTitle
		changed = true
	}
	if taskDesc != "" {
		upd.Description = &taskDesc
		changed = true
	}
	if taskSeverity != "" {
		if !models.EvaluationLabel(taskSeverity).Valid() {
			return fmt.Errorf("unknown severity %q", taskSeverity)
		}
		severity := models.EvaluationLabel(taskSeverity)
		upd.Severity = &severity
		changed = true
	}

	if !changed {
		return fmt.Errorf("no updates specified (use --status, --title, --desc, or --severity)")
	}

	if dryRun {
		ui.DryRunMsg("Would update task %s", shortID(t.ID))
		return nil
	}

	if upd.Status != nil {
		// Route through the service so the status value is validated in
		// one place; other fields go straight to the store.
		if _, err := svc.SetStatus(ctx, t.ID, *upd.Status); err != nil {
			return err
		}
		upd.Status = nil
	}
	if upd.Title != nil || upd.Description != nil || upd.Severity != nil {
		if _, err := s.UpdateTask(ctx, t.ID, upd); err != nil {
			return err
		}
	}

	ui.Success("Updated task %s", output.Cyan(shortID(t.ID)))
	return nil
}

func taskCancelRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	s, _ := getStore()
	ctx := context.Background()

	t, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would cancel task %s", shortID(t.ID))
		return nil
	}

	if _, err := svc.SetStatus(ctx, t.ID, models.TaskStatusCancelled); err != nil {
		return err
	}

	ui.Success("Cancelled task %s", output.Cyan(shortID(t.ID)))
	return nil
}

func taskDeleteRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	t, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete task %s", shortID(t.ID))
		return nil
	}

	if err := s.DeleteTask(ctx, t.ID); err != nil {
		return err
	}

	ui.Success("Deleted task %s", output.Cyan(shortID(t.ID)))
	return nil
}

// findTask finds a task by full ID or unique prefix match.
func findTask(ctx context.Context, s store.Store, id string) (*models.Task, error) {
	if t, err := s.GetTask(ctx, id); err == nil {
		return t, nil
	}

	list, err := s.ListTasks(ctx, store.TaskFilter{Limit: store.ScanAll})
	if err != nil {
		return nil, err
	}

	var matches []*models.Task
	for _, t := range list {
		if strings.HasPrefix(t.ID, id) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("task not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous task ID %s: matches %d tasks", id, len(matches))
	}
}
