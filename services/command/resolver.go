// File: services/command/resolver.go
package command

import (
	"context"
	"errors"
	"fmt"

	networkRepo "transitops/database/repository/network"
	tripRepo "transitops/database/repository/trip"
	"transitops/models"
	"transitops/utils"

	"go.uber.org/zap"
)

// Resolution is the resolver's outcome: either a verified target, or an
// explicit unresolved state carrying concrete clarification options.
type Resolution struct {
	Target             *models.ResolvedTarget
	NeedsClarification bool
	Prompt             string
	Options            []models.ClarificationOption
}

// EntityResolver converts interpreter output into a database-verified
// target. Read-only: it never mutates anything.
type EntityResolver interface {
	Resolve(ctx context.Context, cmd *models.Command) (*Resolution, error)
}

// DefaultEntityResolver implements EntityResolver over the trip and network
// repositories.
type DefaultEntityResolver struct {
	TripRepo    tripRepo.TripRepository
	NetworkRepo networkRepo.NetworkRepository
}

// Resolve attempts each strategy in strict priority order and short-circuits
// on the first success. Every successful path ends in an independent
// existence check; nothing the interpreter proposed is trusted on its own.
func (r *DefaultEntityResolver) Resolve(ctx context.Context, cmd *models.Command) (*Resolution, error) {
	logger := utils.GetLogger()
	spec := specFor(cmd.Intent.Action)
	kind := spec.TargetKind

	// 1) Pre-selected id from UI context. Pre-verified-pending: still
	// subject to the lookup below.
	if cmd.Hints.SelectedEntityID != 0 && (cmd.Hints.SelectedKind == "" || cmd.Hints.SelectedKind == kind) {
		target, err := r.verify(ctx, kind, cmd.Hints.SelectedEntityID)
		if err != nil {
			return nil, err
		}
		if target != nil {
			return &Resolution{Target: target}, nil
		}
		// Stale UI selection: fall through.
	}

	floor := confidenceFloor(cmd.Intent.Action)
	confidence := cmd.Intent.Confidence
	// Noisy OCR input lowers trust in the whole reading: the effective
	// confidence is the weaker of interpretation and extraction.
	if cmd.Origin == models.OriginImage && cmd.OCRConf > 0 && cmd.OCRConf < confidence {
		confidence = cmd.OCRConf
	}
	clarify := func(prompt string, options []models.ClarificationOption) *Resolution {
		return &Resolution{NeedsClarification: true, Prompt: prompt, Options: options}
	}

	// 2) Interpreter-proposed numeric id.
	if cmd.Intent.TargetID != 0 {
		target, err := r.verify(ctx, kind, cmd.Intent.TargetID)
		if err != nil {
			return nil, err
		}
		if target != nil {
			if confidence < floor {
				return clarify(
					fmt.Sprintf("Did you mean %s?", target.Label),
					[]models.ClarificationOption{{Kind: kind, ID: target.ID, Label: target.Label, Confidence: confidence}},
				), nil
			}
			return &Resolution{Target: target}, nil
		}
		// Hallucinated id: record it and fall through, never retry it.
		logger.Warn("rejected hallucinated entity id",
			zap.String("kind", kind),
			zap.Int64("id", cmd.Intent.TargetID),
			zap.Float64("confidence", cmd.Intent.Confidence))
	}

	// 3) Time token: schedule match, trips only.
	if cmd.Intent.TargetTime != "" && kind == models.KindTrip {
		trips, err := r.TripRepo.FindByDeparture(ctx, normalizeTime(cmd.Intent.TargetTime))
		if err != nil {
			return nil, err
		}
		switch len(trips) {
		case 0:
			// Fall through to label search.
		case 1:
			if confidence < floor {
				return clarify(
					fmt.Sprintf("Did you mean %s?", trips[0].Name),
					[]models.ClarificationOption{{Kind: kind, ID: trips[0].ID, Label: trips[0].Name, Confidence: confidence}},
				), nil
			}
			return &Resolution{Target: &models.ResolvedTarget{Kind: kind, ID: trips[0].ID, Label: trips[0].Name}}, nil
		default:
			options := make([]models.ClarificationOption, 0, len(trips))
			for _, t := range trips {
				options = append(options, models.ClarificationOption{Kind: kind, ID: t.ID, Label: t.Name})
			}
			return clarify(fmt.Sprintf("Several trips depart at %s. Which one?", cmd.Intent.TargetTime), options), nil
		}
	}

	// 4) Free-text label via the candidate matcher.
	if cmd.Intent.TargetLabel != "" || cmd.Origin == models.OriginImage {
		entities, err := r.matchEntities(ctx, kind)
		if err != nil {
			return nil, err
		}

		var res MatchResult
		if cmd.Origin == models.OriginImage {
			res = MatchFromText(cmd.RawText, entities)
		} else {
			res = Match(cmd.Intent.TargetLabel, entities)
		}

		switch res.Type {
		case MatchSingle:
			target, err := r.verify(ctx, kind, res.Best.Entity.ID)
			if err != nil {
				return nil, err
			}
			if target == nil {
				break // vanished between listing and verification
			}
			if confidence < floor {
				return clarify(
					fmt.Sprintf("Did you mean %s?", target.Label),
					[]models.ClarificationOption{{Kind: kind, ID: target.ID, Label: target.Label, Confidence: res.Best.Score}},
				), nil
			}
			return &Resolution{Target: target}, nil
		case MatchMultiple:
			options := make([]models.ClarificationOption, 0, len(res.Candidates))
			for _, c := range res.Candidates {
				options = append(options, models.ClarificationOption{
					Kind: kind, ID: c.Entity.ID, Label: c.Entity.Label, Confidence: c.Score,
				})
			}
			return clarify("I found several possible matches. Which one did you mean?", options), nil
		}
	}

	return clarify("I couldn't work out which "+kind+" you meant. Can you name it or give its id?", nil), nil
}

// verify re-confirms existence and returns nil (not an error) when the id
// does not exist, so callers can fall through to the next strategy.
func (r *DefaultEntityResolver) verify(ctx context.Context, kind string, id int64) (*models.ResolvedTarget, error) {
	switch kind {
	case models.KindTrip:
		trip, err := r.TripRepo.GetByID(ctx, id)
		if errors.Is(err, tripRepo.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &models.ResolvedTarget{Kind: kind, ID: trip.ID, Label: trip.Name}, nil
	case models.KindRoute:
		route, err := r.NetworkRepo.GetRouteByID(ctx, id)
		if errors.Is(err, networkRepo.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &models.ResolvedTarget{Kind: kind, ID: route.ID, Label: route.Name}, nil
	case models.KindPath:
		path, err := r.NetworkRepo.GetPathByID(ctx, id)
		if errors.Is(err, networkRepo.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &models.ResolvedTarget{Kind: kind, ID: path.ID, Label: path.Name}, nil
	case models.KindStop:
		stop, err := r.NetworkRepo.GetStopByID(ctx, id)
		if errors.Is(err, networkRepo.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &models.ResolvedTarget{Kind: kind, ID: stop.ID, Label: stop.Name}, nil
	default:
		return nil, fmt.Errorf("unresolvable entity kind %q", kind)
	}
}

// matchEntities assembles the matcher snapshot for the implied kind.
func (r *DefaultEntityResolver) matchEntities(ctx context.Context, kind string) ([]MatchEntity, error) {
	switch kind {
	case models.KindTrip:
		trips, err := r.TripRepo.ListUpcoming(ctx)
		if err != nil {
			return nil, err
		}
		routes, err := r.NetworkRepo.ListRoutes(ctx)
		if err != nil {
			return nil, err
		}
		routeNames := make(map[int64]string, len(routes))
		for _, rt := range routes {
			routeNames[rt.ID] = rt.Name
		}
		entities := make([]MatchEntity, 0, len(trips))
		for _, t := range trips {
			entities = append(entities, MatchEntity{
				Kind:       models.KindTrip,
				ID:         t.ID,
				Label:      t.Name,
				TimeOfDay:  t.DepartureTime,
				ParentName: routeNames[t.RouteID],
			})
		}
		return entities, nil
	case models.KindRoute:
		routes, err := r.NetworkRepo.ListRoutes(ctx)
		if err != nil {
			return nil, err
		}
		entities := make([]MatchEntity, 0, len(routes))
		for _, rt := range routes {
			entities = append(entities, MatchEntity{Kind: models.KindRoute, ID: rt.ID, Label: rt.Name})
		}
		return entities, nil
	case models.KindPath:
		paths, err := r.NetworkRepo.ListPaths(ctx)
		if err != nil {
			return nil, err
		}
		entities := make([]MatchEntity, 0, len(paths))
		for _, p := range paths {
			entities = append(entities, MatchEntity{Kind: models.KindPath, ID: p.ID, Label: p.Name})
		}
		return entities, nil
	case models.KindStop:
		stops, err := r.NetworkRepo.ListStops(ctx)
		if err != nil {
			return nil, err
		}
		entities := make([]MatchEntity, 0, len(stops))
		for _, s := range stops {
			entities = append(entities, MatchEntity{Kind: models.KindStop, ID: s.ID, Label: s.Name})
		}
		return entities, nil
	default:
		return nil, fmt.Errorf("unresolvable entity kind %q", kind)
	}
}
