package board

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"jobmate/board-service/internal/model"
	"jobmate/board-service/internal/store"
)

// RegisterUser creates the current user's document with name, email and
// role. When it already exists those three fields are overwritten and the
// rest of the profile is kept. created reports which case happened.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (user model.User, created bool, err error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	in = s.sanitizer.Register(in)
	if err := Validate(in); err != nil {
		return model.User{}, false, err
	}

	now := s.now().UTC()
	doc, err := store.Encode(model.User{
		ID:        userID,
		Role:      in.Role,
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: &now,
	})
	if err != nil {
		return model.User{}, false, s.persistence("encode user", err)
	}

	stored, created, err := s.store.CreateIfAbsent(ctx, model.CollectionUsers, userID, doc)
	if err != nil {
		return model.User{}, false, s.persistence("create user", err)
	}
	if created {
		log.Info().Str("userId", userID).Str("role", string(in.Role)).Msg("user registered")
		var u model.User
		if err := store.Decode(stored, &u); err != nil {
			return model.User{}, false, s.persistence("decode user", err)
		}
		return u, true, nil
	}

	u, err := s.updateUser(ctx, userID, store.Document{
		"name":  in.Name,
		"email": in.Email,
		"role":  in.Role,
	})
	return u, false, err
}

// MyProfile returns the current user's document.
func (s *Service) MyProfile(ctx context.Context) (model.User, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	return s.getUser(ctx, userID)
}

// UpdateProfile merges the non-nil fields of in into the current user's
// document.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileInput) (model.User, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	in = s.sanitizer.Profile(in)
	if err := Validate(in); err != nil {
		return model.User{}, err
	}

	patch := store.Document{}
	for key, v := range map[string]*string{
		"name":            in.Name,
		"email":           in.Email,
		"phone":           in.Phone,
		"company":         in.Company,
		"position":        in.Position,
		"experienceLevel": in.ExperienceLevel,
		"workExperience":  in.WorkExperience,
	} {
		if v != nil {
			patch[key] = *v
		}
	}
	if in.Skills != nil {
		patch["skills"] = in.Skills
	}
	if in.SalaryRange != nil {
		patch["salaryRange"] = *in.SalaryRange
	}
	if len(patch) == 0 {
		return s.getUser(ctx, userID)
	}
	return s.updateUser(ctx, userID, patch)
}

// Settings returns the global catalog of skills, contract types and
// experience levels. A missing catalog yields empty lists.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	var st model.Settings
	err := s.getDoc(ctx, model.CollectionSettings, model.GlobalSettingsID, &st)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.Settings{}, err
	}
	st.Skills = nonNil(st.Skills)
	st.ContractTypes = nonNil(st.ContractTypes)
	st.ExperienceLevels = nonNil(st.ExperienceLevels)
	return st, nil
}
