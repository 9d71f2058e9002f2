// File: services/wizard/wizard.go
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"transitops/config"
	fleetRepo "transitops/database/repository/fleet"
	networkRepo "transitops/database/repository/network"
	"transitops/models"
	"transitops/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Creator executes a fully slot-filled creation. The command executor
// satisfies this without either package importing the other.
type Creator interface {
	Execute(ctx context.Context, operatorID string, action models.Action, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error)
}

// WizardService drives multi-turn entity creation: one question per missing
// slot, re-asking on invalid answers, then a summary the operator must
// approve before anything is written.
type WizardService interface {
	Active(ctx context.Context, operatorID string) (bool, error)
	Start(ctx context.Context, operatorID string, intent *models.Intent) (*models.CommandResponse, error)
	HandleTurn(ctx context.Context, operatorID, text string) (*models.CommandResponse, error)
}

// WizardStore persists wizard state keyed by operator: one wizard per
// operator at a time.
type WizardStore interface {
	Load(ctx context.Context, operatorID string) (*models.WizardSession, error)
	Save(ctx context.Context, session *models.WizardSession) error
	Discard(ctx context.Context, operatorID string) error
}

// DefaultWizardService implements WizardService over a WizardStore.
type DefaultWizardService struct {
	Store       WizardStore
	NetworkRepo networkRepo.NetworkRepository
	FleetRepo   fleetRepo.FleetRepository
	Creator     Creator
}

func NewDefaultWizardService(store WizardStore, network networkRepo.NetworkRepository, fleet fleetRepo.FleetRepository, creator Creator) *DefaultWizardService {
	return &DefaultWizardService{Store: store, NetworkRepo: network, FleetRepo: fleet, Creator: creator}
}

// RedisWizardStore keeps wizard state in Redis under the wizard TTL, so an
// abandoned flow quietly disappears.
type RedisWizardStore struct {
	Client *redis.Client
}

func (s *RedisWizardStore) Load(ctx context.Context, operatorID string) (*models.WizardSession, error) {
	raw, err := s.Client.Get(ctx, wizardKey(operatorID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wizard read failed: %w", err)
	}
	var session models.WizardSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	return &session, nil
}

func (s *RedisWizardStore) Save(ctx context.Context, session *models.WizardSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}
	if err := s.Client.Set(ctx, wizardKey(session.OperatorID), raw, config.WizardTTL()).Err(); err != nil {
		return fmt.Errorf("wizard write failed: %w", err)
	}
	return nil
}

func (s *RedisWizardStore) Discard(ctx context.Context, operatorID string) error {
	return s.Client.Del(ctx, wizardKey(operatorID)).Err()
}

// Slot order per creation kind. Optional slots accept "skip".
var slotsByKind = map[string][]string{
	"trip":  {"name", "date", "time", "route_id", "capacity", "vehicle_id", "driver_id"},
	"route": {"name", "path_id", "first_departure", "headway_minutes"},
	"path":  {"name", "stop_ids"},
	"stop":  {"name", "code"},
}

var optionalSlots = map[string]bool{
	"capacity":        true,
	"vehicle_id":      true,
	"driver_id":       true,
	"first_departure": true,
	"headway_minutes": true,
	"code":            true,
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hhmmRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

func wizardKey(operatorID string) string { return "wizard:sess:" + operatorID }

func creationKind(a models.Action) string {
	switch a {
	case models.ActionCreateTrip:
		return "trip"
	case models.ActionCreateRoute:
		return "route"
	case models.ActionCreatePath:
		return "path"
	case models.ActionCreateStop:
		return "stop"
	}
	return ""
}

func creationAction(kind string) models.Action {
	switch kind {
	case "trip":
		return models.ActionCreateTrip
	case "route":
		return models.ActionCreateRoute
	case "path":
		return models.ActionCreatePath
	case "stop":
		return models.ActionCreateStop
	}
	return models.ActionUnknown
}

func (s *DefaultWizardService) Active(ctx context.Context, operatorID string) (bool, error) {
	session, err := s.Store.Load(ctx, operatorID)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// Start opens a wizard for the intent's creation kind, pre-filling any slots
// the first utterance already supplied, and returns the first question.
func (s *DefaultWizardService) Start(ctx context.Context, operatorID string, intent *models.Intent) (*models.CommandResponse, error) {
	kind := creationKind(intent.Action)
	if kind == "" {
		return nil, fmt.Errorf("action %s does not start a wizard", intent.Action)
	}

	session := &models.WizardSession{
		SessionID:  uuid.New().String(),
		OperatorID: operatorID,
		Kind:       kind,
		Slots:      slotsByKind[kind],
		Values:     map[string]string{},
		CreatedAt:  time.Now(),
	}

	// Pre-fill from the interpreter's parameters, validating each value the
	// same way a typed answer would be.
	for _, slot := range session.Slots {
		if raw, ok := intent.Parameters[slot]; ok && raw != "" {
			if value, _, errMsg := s.validateSlot(ctx, kind, slot, raw); errMsg == "" {
				session.Values[slot] = value
			}
		}
	}
	if intent.TargetLabel != "" && session.Values["name"] == "" {
		session.Values["name"] = intent.TargetLabel
	}
	if kind == "trip" && intent.TargetTime != "" && session.Values["time"] == "" {
		if hhmmRe.MatchString(intent.TargetTime) {
			session.Values["time"] = intent.TargetTime
		}
	}
	session.StepIndex = s.nextUnfilled(session, 0)

	utils.GetLogger().Info("creation wizard started",
		zap.String("operatorId", operatorID),
		zap.String("kind", kind),
		zap.Int("prefilled", len(session.Values)))

	if session.Complete() {
		session.Confirming = true
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, err
		}
		return s.summaryResponse(session), nil
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.questionResponse(ctx, session, "")
}

// HandleTurn consumes one operator reply: fills or re-asks the current slot,
// advances, and on the final affirmative hands the values to the Creator.
func (s *DefaultWizardService) HandleTurn(ctx context.Context, operatorID, text string) (*models.CommandResponse, error) {
	session, err := s.Store.Load(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &models.CommandResponse{
			Result: &models.CommandResult{OK: false, Message: "No creation in progress."},
		}, nil
	}

	answer := strings.TrimSpace(text)
	if isNegative(answer) {
		if err := s.Store.Discard(ctx, operatorID); err != nil {
			return nil, err
		}
		return &models.CommandResponse{
			Result: &models.CommandResult{OK: true, Message: fmt.Sprintf("Okay, abandoned the new %s.", session.Kind)},
		}, nil
	}

	if session.Confirming {
		if !isAffirmative(answer) {
			// Neither yes nor no: repeat the summary.
			resp := s.summaryResponse(session)
			resp.WizardPrompt = "Please answer yes or no. " + resp.WizardPrompt
			return resp, nil
		}
		result, err := s.Creator.Execute(ctx, operatorID, creationAction(session.Kind), nil, session.Values)
		if err != nil {
			// Leave the wizard open so the operator can cancel or adjust.
			return &models.CommandResponse{
				WizardActive: true,
				WizardPrompt: fmt.Sprintf("That didn't work: %v. Say no to abandon, or yes to retry.", err),
			}, nil
		}
		if err := s.Store.Discard(ctx, operatorID); err != nil {
			return nil, err
		}
		return &models.CommandResponse{Result: result}, nil
	}

	slot := session.CurrentSlot()
	if slot == "" {
		session.Confirming = true
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, err
		}
		return s.summaryResponse(session), nil
	}

	if optionalSlots[slot] && isSkip(answer) {
		session.Values[slot] = ""
	} else {
		value, _, errMsg := s.validateSlot(ctx, session.Kind, slot, answer)
		if errMsg != "" {
			return s.questionResponse(ctx, session, errMsg)
		}
		session.Values[slot] = value
	}

	session.StepIndex = s.nextUnfilled(session, session.StepIndex+1)
	if session.Complete() {
		session.Confirming = true
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, err
		}
		return s.summaryResponse(session), nil
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.questionResponse(ctx, session, "")
}

func (s *DefaultWizardService) nextUnfilled(session *models.WizardSession, from int) int {
	for i := from; i < len(session.Slots); i++ {
		if _, ok := session.Values[session.Slots[i]]; !ok {
			return i
		}
	}
	return len(session.Slots)
}

// validateSlot normalizes one answer. A non-empty errMsg means re-ask.
func (s *DefaultWizardService) validateSlot(ctx context.Context, kind, slot, raw string) (value string, options []string, errMsg string) {
	raw = strings.TrimSpace(raw)
	switch slot {
	case "name":
		if raw == "" {
			return "", nil, "The name can't be empty."
		}
		return raw, nil, ""
	case "code":
		return raw, nil, ""
	case "date":
		if !dateRe.MatchString(raw) {
			return "", nil, "Please give the date as YYYY-MM-DD."
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return "", nil, "That isn't a real date. Please use YYYY-MM-DD."
		}
		return raw, nil, ""
	case "time", "first_departure":
		if !hhmmRe.MatchString(raw) {
			return "", nil, "Please give the time as HH:MM, for example 09:30."
		}
		return raw, nil, ""
	case "capacity":
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return "", nil, "Capacity must be a non-negative number."
		}
		return raw, nil, ""
	case "headway_minutes":
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return "", nil, "The headway must be a positive number of minutes."
		}
		return raw, nil, ""
	case "route_id":
		return s.validateRouteAnswer(ctx, raw)
	case "path_id":
		return s.validatePathAnswer(ctx, raw)
	case "vehicle_id":
		return s.validateVehicleAnswer(ctx, raw)
	case "driver_id":
		return s.validateDriverAnswer(ctx, raw)
	case "stop_ids":
		return s.validateStopsAnswer(ctx, raw)
	default:
		return raw, nil, ""
	}
}

func (s *DefaultWizardService) validateRouteAnswer(ctx context.Context, raw string) (string, []string, string) {
	routes, err := s.NetworkRepo.ListRoutes(ctx)
	if err != nil {
		return "", nil, "I couldn't load the routes just now. Please try again."
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		for _, r := range routes {
			if r.ID == id {
				return raw, nil, ""
			}
		}
		return "", nil, fmt.Sprintf("There is no route with id %d.", id)
	}
	lower := strings.ToLower(raw)
	for _, r := range routes {
		if strings.ToLower(r.Name) == lower {
			return strconv.FormatInt(r.ID, 10), nil, ""
		}
	}
	return "", nil, fmt.Sprintf("I don't know a route called %q. Answer with one of the listed ids.", raw)
}

func (s *DefaultWizardService) validatePathAnswer(ctx context.Context, raw string) (string, []string, string) {
	paths, err := s.NetworkRepo.ListPaths(ctx)
	if err != nil {
		return "", nil, "I couldn't load the paths just now. Please try again."
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		for _, p := range paths {
			if p.ID == id {
				return raw, nil, ""
			}
		}
		return "", nil, fmt.Sprintf("There is no path with id %d.", id)
	}
	lower := strings.ToLower(raw)
	for _, p := range paths {
		if strings.ToLower(p.Name) == lower {
			return strconv.FormatInt(p.ID, 10), nil, ""
		}
	}
	return "", nil, fmt.Sprintf("I don't know a path called %q. Answer with one of the listed ids.", raw)
}

func (s *DefaultWizardService) validateVehicleAnswer(ctx context.Context, raw string) (string, []string, string) {
	vehicles, err := s.FleetRepo.ListActiveVehicles(ctx)
	if err != nil {
		return "", nil, "I couldn't load the vehicles just now. Please try again."
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		for _, v := range vehicles {
			if v.ID == id {
				return raw, nil, ""
			}
		}
		return "", nil, fmt.Sprintf("There is no active vehicle with id %d.", id)
	}
	lower := strings.ToLower(raw)
	for _, v := range vehicles {
		if strings.ToLower(v.Registration) == lower {
			return strconv.FormatInt(v.ID, 10), nil, ""
		}
	}
	return "", nil, fmt.Sprintf("I don't know a vehicle %q. Answer with an id or registration, or say skip.", raw)
}

func (s *DefaultWizardService) validateDriverAnswer(ctx context.Context, raw string) (string, []string, string) {
	drivers, err := s.FleetRepo.ListActiveDrivers(ctx)
	if err != nil {
		return "", nil, "I couldn't load the drivers just now. Please try again."
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		for _, d := range drivers {
			if d.ID == id {
				return raw, nil, ""
			}
		}
		return "", nil, fmt.Sprintf("There is no active driver with id %d.", id)
	}
	lower := strings.ToLower(raw)
	for _, d := range drivers {
		if strings.ToLower(d.Name) == lower {
			return strconv.FormatInt(d.ID, 10), nil, ""
		}
	}
	return "", nil, fmt.Sprintf("I don't know a driver called %q. Answer with an id or full name, or say skip.", raw)
}

func (s *DefaultWizardService) validateStopsAnswer(ctx context.Context, raw string) (string, []string, string) {
	stops, err := s.NetworkRepo.ListStops(ctx)
	if err != nil {
		return "", nil, "I couldn't load the stops just now. Please try again."
	}
	known := make(map[int64]bool, len(stops))
	for _, st := range stops {
		known[st.ID] = true
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	var ids []string
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return "", nil, fmt.Sprintf("%q is not a stop id. List stop ids separated by commas.", part)
		}
		if !known[id] {
			return "", nil, fmt.Sprintf("There is no stop with id %d.", id)
		}
		ids = append(ids, part)
	}
	if len(ids) < 2 {
		return "", nil, "A path needs at least two stops."
	}
	return strings.Join(ids, ","), nil, ""
}

// questionResponse builds the next question, listing concrete choices when
// the slot refers to another entity.
func (s *DefaultWizardService) questionResponse(ctx context.Context, session *models.WizardSession, problem string) (*models.CommandResponse, error) {
	slot := session.CurrentSlot()
	prompt, options := s.promptFor(ctx, session.Kind, slot)
	if problem != "" {
		prompt = problem + " " + prompt
	}
	return &models.CommandResponse{
		WizardActive:  true,
		WizardPrompt:  prompt,
		WizardOptions: options,
	}, nil
}

func (s *DefaultWizardService) promptFor(ctx context.Context, kind, slot string) (string, []string) {
	switch slot {
	case "name":
		return fmt.Sprintf("What should the new %s be called?", kind), nil
	case "code":
		return "Does the stop have a short code? (say skip if not)", nil
	case "date":
		return "Which service date? (YYYY-MM-DD)", nil
	case "time":
		return "What departure time? (HH:MM)", nil
	case "first_departure":
		return "What is the first departure of the day? (HH:MM, or skip)", nil
	case "capacity":
		return "How many seats? (or skip)", nil
	case "headway_minutes":
		return "How many minutes between departures? (or skip)", nil
	case "route_id":
		return "Which route does the trip run on?", s.routeOptions(ctx)
	case "path_id":
		return "Which path does the route follow?", s.pathOptions(ctx)
	case "vehicle_id":
		return "Which vehicle should run it? (or skip)", s.vehicleOptions(ctx)
	case "driver_id":
		return "Which driver? (or skip)", s.driverOptions(ctx)
	case "stop_ids":
		return "Which stops, in order? List their ids separated by commas.", s.stopOptions(ctx)
	default:
		return fmt.Sprintf("What value for %s?", slot), nil
	}
}

func (s *DefaultWizardService) routeOptions(ctx context.Context) []string {
	routes, err := s.NetworkRepo.ListRoutes(ctx)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, fmt.Sprintf("%d: %s", r.ID, r.Name))
	}
	return out
}

func (s *DefaultWizardService) pathOptions(ctx context.Context) []string {
	paths, err := s.NetworkRepo.ListPaths(ctx)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, fmt.Sprintf("%d: %s", p.ID, p.Name))
	}
	return out
}

func (s *DefaultWizardService) vehicleOptions(ctx context.Context) []string {
	vehicles, err := s.FleetRepo.ListActiveVehicles(ctx)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, fmt.Sprintf("%d: %s", v.ID, v.Registration))
	}
	return out
}

func (s *DefaultWizardService) driverOptions(ctx context.Context) []string {
	drivers, err := s.FleetRepo.ListActiveDrivers(ctx)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, fmt.Sprintf("%d: %s", d.ID, d.Name))
	}
	return out
}

func (s *DefaultWizardService) stopOptions(ctx context.Context) []string {
	stops, err := s.NetworkRepo.ListStops(ctx)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(stops))
	for _, st := range stops {
		out = append(out, fmt.Sprintf("%d: %s", st.ID, st.Name))
	}
	return out
}

func (s *DefaultWizardService) summaryResponse(session *models.WizardSession) *models.CommandResponse {
	var parts []string
	for _, slot := range session.Slots {
		if v := session.Values[slot]; v != "" {
			parts = append(parts, fmt.Sprintf("%s %s", strings.ReplaceAll(slot, "_", " "), v))
		}
	}
	return &models.CommandResponse{
		WizardActive: true,
		WizardPrompt: fmt.Sprintf("Create %s with %s? (yes/no)", session.Kind, strings.Join(parts, ", ")),
	}
}

func isAffirmative(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "yeah", "yep", "confirm", "ok", "okay", "do it", "go ahead":
		return true
	}
	return false
}

func isNegative(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "no", "n", "nope", "cancel", "abort", "stop", "never mind", "nevermind":
		return true
	}
	return false
}

func isSkip(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "skip", "none", "n/a", "na", "-", "later":
		return true
	}
	return false
}
