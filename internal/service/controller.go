package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/decision"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
	"github.com/shenikar/city_emergency_response/internal/unit"
	"github.com/shenikar/city_emergency_response/internal/webhook"
	"github.com/sirupsen/logrus"
)

// historyWindow is how many past entries a unit sees per step.
const historyWindow = 10

// knowledge is the standing guidance handed to each specialty.
var knowledge = map[models.UnitType]string{
	models.UnitMedical:    "Triage before transport. Match the team to incident severity and route casualties to the nearest hospital with free beds.",
	models.UnitRescue:     "Identify the hazard before entry. Gas leaks need breathing apparatus and an upwind approach; high floors need aerial ladders.",
	models.UnitSecurity:   "Set the perimeter first, then evacuate. Post two officers at each access point.",
	models.UnitMonitoring: "Report gas, temperature and smoke readings. Forecast spread from wind speed and direction.",
	models.UnitTraffic:    "Keep rescue routes clear. Put roads near the incident under control and report congestion.",
}

// RunEpoch plans the response to every active incident and works the task
// graph until it is quiescent or MaxEpochSteps dispatches have been made.
// Tasks are dispatched one at a time; the environment ticks after each.
func (s *exerciseService) RunEpoch(ctx context.Context) (*EpochReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.runID = uuid.New()
	report := &EpochReport{RunID: s.runID, Epoch: s.epoch}
	log := s.logger.WithFields(logrus.Fields{
		"service": "Exercise",
		"method":  "RunEpoch",
		"epoch":   s.epoch,
		"run_id":  s.runID,
	})

	s.graph.Reset()
	s.dm.Refresh(ctx, s.env)
	events := s.env.ActiveEvents()
	if len(events) == 0 {
		log.Info("No active incidents. Nothing to plan")
		report.Counts = s.graph.Counts()
		return report, nil
	}

	subtasks, err := s.plan(ctx, log, events)
	if err != nil {
		log.WithError(err).Error("Failed to plan epoch")
		return nil, fmt.Errorf("service: plan epoch %d: %w", s.epoch, err)
	}
	if _, err := s.graph.Load(subtasks); err != nil {
		log.WithError(err).Error("Rejected initial plan")
		return nil, fmt.Errorf("service: load plan: %w", err)
	}
	log.WithField("tasks", s.graph.Len()).Info("Epoch planned")

	defer s.releaseAll()
	for report.Steps < s.cfg.MaxEpochSteps {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Epoch cancelled")
			return nil, fmt.Errorf("service: epoch %d: %w", s.epoch, err)
		}
		for _, id := range s.graph.FailBlocked() {
			log.WithField("task_id", id).Warn("Task failed by a failed prerequisite")
			s.recordResult(ctx, log, id)
		}
		s.graph.Refresh()
		ready := s.graph.ReadySet()
		if len(ready) == 0 {
			break
		}
		if err := s.step(ctx, ready[0], report); err != nil {
			return nil, err
		}
		report.Steps++
		s.env.Tick(s.cfg.TickMinutes)
		s.dm.Refresh(ctx, s.env)
	}

	report.Exhausted = !s.graph.Done()
	report.Counts = s.graph.Counts()
	report.Tasks = s.graph.Tasks()
	s.publish(ctx, log, webhook.TaskEvent{Type: webhook.EventEpochDone, Counts: report.Counts})
	log.WithFields(logrus.Fields{
		"steps":     report.Steps,
		"succeeded": report.Counts[models.TaskSuccess],
		"failed":    report.Counts[models.TaskFailure],
		"exhausted": report.Exhausted,
	}).Info("Epoch finished")
	return report, nil
}

func (s *exerciseService) plan(ctx context.Context, log *logrus.Entry, events []*models.EmergencyEvent) ([]taskgraph.Subtask, error) {
	req := decision.PlanRequest{
		Events:      events,
		Environment: s.dm.QueryRelevantContext("").String(),
	}
	for _, name := range s.unitOrder {
		req.Units = append(req.Units, decision.UnitInfo{Name: name, Type: s.units[name].Type()})
	}
	var subtasks []taskgraph.Subtask
	err := retry(ctx, log, s.cfg.StepMaxRetries, s.cfg.StepRetryDelay, func() error {
		var err error
		subtasks, err = s.decider.Plan(ctx, req)
		return err
	})
	return subtasks, err
}

// step dispatches one ready task to its units and settles the result.
// Only cancellation and graph invariant breaches are returned as errors.
func (s *exerciseService) step(ctx context.Context, task *models.Task, report *EpochReport) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "Exercise",
		"method":  "step",
		"epoch":   s.epoch,
		"task_id": task.ID,
	})

	units := s.selectUnits(task)
	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name())
	}
	if err := s.graph.MarkInProgress(task.ID, names); err != nil {
		log.WithError(err).Error("Ready task could not start")
		return fmt.Errorf("service: start task %d: %w", task.ID, err)
	}
	if len(units) == 0 {
		log.WithField("candidates", task.UnitTypes).Warn("No unit matches the task")
		return s.settle(ctx, log, task.ID, false, fmt.Sprintf("no unit matches candidates %v", task.UnitTypes), nil, report)
	}
	if len(units) < task.MinimumRequiredUnits {
		log.WithFields(logrus.Fields{
			"units":   len(units),
			"minimum": task.MinimumRequiredUnits,
		}).Warn("Fewer units than required. Dispatching anyway")
	}
	log.WithField("units", names).Info("Dispatching task")

	var (
		reflections []string
		summaries   []string
		success     = true
		dispatchErr error
	)
	for _, u := range units {
		ref, err := s.dispatch(ctx, task, u)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.abandon(task.ID, units, "interrupted by cancellation")
				return fmt.Errorf("service: task %d: %w", task.ID, ctxErr)
			}
			dispatchErr = err
			break
		}
		reflections = append(reflections, fmt.Sprintf("%s: %s", u.Name(), ref.Reasoning))
		summaries = append(summaries, ref.Summary)
		success = success && ref.TaskStatus
	}

	if dispatchErr != nil {
		cur, err := s.graph.Get(task.ID)
		if err != nil {
			return fmt.Errorf("service: task %d: %w", task.ID, err)
		}
		if cur.Attempts < s.cfg.MaxTaskAttempts {
			log.WithError(dispatchErr).WithField("attempt", cur.Attempts).Warn("Dispatch failed. Task requeued")
			s.abandon(task.ID, units, fmt.Sprintf("attempt %d failed: %v", cur.Attempts, dispatchErr))
			return nil
		}
		log.WithError(dispatchErr).Error("Dispatch retries exhausted. Task failed")
		s.release(units)
		return s.settle(ctx, log, task.ID, false,
			fmt.Sprintf("dispatch failed after %d attempts: %v", cur.Attempts, dispatchErr), nil, report)
	}

	if !success {
		s.release(units)
	}
	for _, u := range units {
		u.Assign(nil)
		s.dm.UpdateUnit(u.State())
	}
	return s.settle(ctx, log, task.ID, success, strings.Join(reflections, "; "), summaries, report)
}

// dispatch runs one unit step and its reflection.
func (s *exerciseService) dispatch(ctx context.Context, task *models.Task, u *unit.Unit) (decision.Reflection, error) {
	u.Assign(task)
	brief := unit.Briefing{
		Environment: s.dm.QueryRelevantContext(task.Description).String(),
		History:     s.dm.History(u.Name(), historyWindow),
		OtherUnits:  s.dm.OtherUnits(u.Name()),
		Knowledge:   knowledge[u.Type()],
	}
	for _, ev := range s.env.ActiveEvents() {
		brief.EventIDs = append(brief.EventIDs, ev.ID)
	}

	entry := models.HistoryEntry{
		Timestamp: s.env.Now(),
		Unit:      u.Name(),
		TaskID:    task.ID,
		Task:      task.Description,
	}
	defer func() { s.dm.UpdateUnit(u.State()) }()

	_, detail, err := u.Step(ctx, task, brief)
	if err != nil {
		entry.Feedback = err.Error()
		s.dm.AppendHistory(entry)
		return decision.Reflection{}, err
	}
	s.saveArtifact(ctx, u.Name(), task.ID, detail)

	ref, err := u.Reflect(ctx, task, detail)
	if err != nil {
		entry.Feedback = err.Error()
		s.dm.AppendHistory(entry)
		return decision.Reflection{}, err
	}
	entry.Feedback = ref.Summary
	entry.Success = ref.TaskStatus
	s.dm.AppendHistory(entry)
	return ref, nil
}

// settle records the terminal result of a task and asks for a strategy edit.
func (s *exerciseService) settle(ctx context.Context, log *logrus.Entry, id models.TaskID, success bool, reflection string, summaries []string, report *EpochReport) error {
	if err := s.graph.MarkResult(id, success, reflection, summaries...); err != nil {
		log.WithError(err).Error("Failed to record task result")
		return fmt.Errorf("service: finish task %d: %w", id, err)
	}
	log.WithField("success", success).Info("Task finished")
	s.recordResult(ctx, log, id)
	s.applyStrategy(ctx, log, id, reflection, report)
	return nil
}

// applyStrategy asks the collaborator for an optional structural edit and
// applies it if the graph accepts it. Rejections are logged and counted.
func (s *exerciseService) applyStrategy(ctx context.Context, log *logrus.Entry, id models.TaskID, feedback string, report *EpochReport) {
	last, err := s.graph.Get(id)
	if err != nil {
		return
	}
	edit, err := s.decider.Strategy(ctx, decision.StrategyRequest{
		Epoch:       s.epoch,
		Tasks:       s.graph.Tasks(),
		LastTask:    last,
		Feedback:    feedback,
		Environment: s.dm.QueryRelevantContext(last.Description).String(),
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidEdit) {
			report.Rejected++
		}
		log.WithError(err).Warn("Strategy call failed. Keeping the plan")
		return
	}
	if edit == nil {
		return
	}
	elog := log.WithField("edit", edit.Kind())
	applied, err := s.graph.Apply(s.epoch, edit)
	if err != nil {
		report.Rejected++
		elog.WithError(err).Warn("Rejected structural edit")
		return
	}
	if applied {
		report.Edits++
		elog.Info("Structural edit applied")
	}
}

// selectUnits resolves the candidate list: unit names first, specialty
// aliases second, in roster order without duplicates.
func (s *exerciseService) selectUnits(t *models.Task) []*unit.Unit {
	seen := make(map[string]bool)
	var out []*unit.Unit
	add := func(u *unit.Unit) {
		if !seen[u.Name()] {
			seen[u.Name()] = true
			out = append(out, u)
		}
	}
	for _, c := range t.UnitTypes {
		if u, ok := s.units[c]; ok {
			add(u)
			continue
		}
		typ, ok := models.ParseUnitType(strings.ToLower(c))
		if !ok {
			continue
		}
		for _, name := range s.unitOrder {
			if s.units[name].Type() == typ {
				add(s.units[name])
			}
		}
	}
	return out
}

func (s *exerciseService) abandon(id models.TaskID, units []*unit.Unit, note string) {
	s.release(units)
	for _, u := range units {
		u.Assign(nil)
	}
	if err := s.graph.Requeue(id, note); err != nil {
		s.logger.WithError(err).WithField("task_id", id).Error("Failed to requeue task")
	}
}

func (s *exerciseService) release(units []*unit.Unit) {
	for _, u := range units {
		if ids := u.ReleaseAll(); len(ids) > 0 {
			s.logger.WithFields(logrus.Fields{
				"service":  "Exercise",
				"method":   "release",
				"unit":     u.Name(),
				"released": len(ids),
			}).Debug("Resources released")
		}
	}
}

func (s *exerciseService) releaseAll() {
	for _, name := range s.unitOrder {
		u := s.units[name]
		u.ReleaseAll()
		u.Assign(nil)
		s.dm.UpdateUnit(u.State())
	}
}

// ArtifactHash keys the artifact of one unit step.
func ArtifactHash(unitName, input string) string {
	sum := sha256.Sum256([]byte(unitName + "\n" + input))
	return hex.EncodeToString(sum[:])
}

func (s *exerciseService) saveArtifact(ctx context.Context, unitName string, id models.TaskID, detail models.StepDetail) {
	a := &models.RunArtifact{
		InputHash:   ArtifactHash(unitName, detail.Input),
		RunID:       s.runID,
		Unit:        unitName,
		TaskID:      id,
		Input:       detail.Input,
		ActionList:  detail.ActionList,
		FinalAnswer: detail.FinalAnswer,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveArtifact(ctx, a); err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "Exercise",
			"method":  "saveArtifact",
			"unit":    unitName,
			"task_id": id,
		}).WithError(err).Warn("Failed to persist run artifact")
	}
}

func (s *exerciseService) recordResult(ctx context.Context, log *logrus.Entry, id models.TaskID) {
	t, err := s.graph.Get(id)
	if err != nil {
		return
	}
	res := &models.TaskResult{
		ID:          uuid.New(),
		RunID:       s.runID,
		Epoch:       s.epoch,
		TaskID:      t.ID,
		Description: t.Description,
		Status:      t.Status,
		Units:       t.AssignedUnits,
		Reflection:  t.Reflection,
		Summary:     t.Summary,
		Attempts:    t.Attempts,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveTaskResult(ctx, res); err != nil {
		log.WithError(err).Warn("Failed to persist task result")
	}
	s.publish(ctx, log, webhook.TaskEvent{Type: webhook.EventTaskFinished, Result: res})
}

func (s *exerciseService) publish(ctx context.Context, log *logrus.Entry, ev webhook.TaskEvent) {
	if s.publisher == nil {
		return
	}
	ev.ID = uuid.New()
	ev.RunID = s.runID
	ev.Epoch = s.epoch
	ev.Timestamp = time.Now().UTC()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.WithError(err).Warn("Failed to publish task event")
	}
}

// retry runs fn up to attempts times with a fixed delay, wrapping the last
// error in ErrDispatchFailure.
func retry(ctx context.Context, log *logrus.Entry, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		log.WithError(lastErr).Warnf("Decision call failed. Attempt %d of %d", i, attempts)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if errors.Is(lastErr, models.ErrDispatchFailure) {
		return lastErr
	}
	return fmt.Errorf("%w: %w", models.ErrDispatchFailure, lastErr)
}
