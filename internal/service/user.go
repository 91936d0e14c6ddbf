package service

import (
	"strings"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

type UserPatch struct {
	Name     *string
	KcalGoal *float64
}

func GetUser(s *store.Store) (model.User, error) {
	doc, err := s.Load()
	if err != nil {
		return model.User{}, err
	}
	return doc.User, nil
}

func UpdateUser(s *store.Store, patch UserPatch) (model.User, error) {
	if patch.KcalGoal != nil {
		if err := validateNonNegativeFloat("kcal_goal", *patch.KcalGoal); err != nil {
			return model.User{}, err
		}
	}
	var user model.User
	err := s.Update(func(doc *model.Document) (bool, error) {
		if patch.Name != nil {
			doc.User.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.KcalGoal != nil {
			doc.User.KcalGoal = *patch.KcalGoal
		}
		user = doc.User
		return patch.Name != nil || patch.KcalGoal != nil, nil
	})
	return user, err
}
