// Package policy holds the entitlement rules for each leave category.
package policy

import (
	"fmt"

	"github.com/garyjia/leave-approval/internal/domain/entity"
)

// Entitlements in days
const (
	PilgrimageDays              = 20
	MarriageDays                = 14
	SickDefaultDays             = 1
	BereavementSpouseDays       = 130
	BereavementFirstDegreeDays  = 7
	BereavementSecondDegreeDays = 3
	MaternitySingletonDays      = 14 * 7
	MaternityTwinDays           = 16 * 7
)

// Input describes the leave being asked for
type Input struct {
	Category    entity.Category
	Subcategory entity.Subcategory
	Relation    entity.Relation
	Period      entity.DateRange
	// RequestedDays adjusts sick leave only; zero means the default
	RequestedDays int
}

// RangeDerived returns true when the duration is the length of the date range
func RangeDerived(c entity.Category) bool {
	return c == entity.CategoryAnnual
}

// Duration computes the entitled number of days. It has no side effects.
func Duration(in Input) (int, error) {
	switch in.Category {
	case entity.CategoryPilgrimage:
		return PilgrimageDays, nil

	case entity.CategoryMarriage:
		return MarriageDays, nil

	case entity.CategorySick:
		if in.RequestedDays < 0 {
			return 0, fmt.Errorf("%w: sick leave days must be positive", entity.ErrValidation)
		}
		if in.RequestedDays > 0 {
			return in.RequestedDays, nil
		}
		return SickDefaultDays, nil

	case entity.CategoryAnnual:
		if err := in.Period.Validate(); err != nil {
			return 0, err
		}
		return in.Period.Days(), nil

	case entity.CategoryBereavement:
		return bereavement(in.Subcategory, in.Relation)

	case entity.CategoryMaternity:
		switch in.Subcategory {
		case entity.SubcategorySingleton:
			return MaternitySingletonDays, nil
		case entity.SubcategoryTwin:
			return MaternityTwinDays, nil
		}
		return 0, fmt.Errorf("%w: maternity leave needs subcategory singleton or twin, got %q", entity.ErrValidation, in.Subcategory)
	}

	return 0, fmt.Errorf("%w: unknown leave category %q", entity.ErrValidation, in.Category)
}

func bereavement(sub entity.Subcategory, rel entity.Relation) (int, error) {
	switch sub {
	case entity.SubcategoryFirstDegree:
		if !rel.IsFirstDegree() {
			return 0, fmt.Errorf("%w: first-degree bereavement needs a first-degree relation, got %q", entity.ErrValidation, rel)
		}
		if rel == entity.RelationSpouse {
			return BereavementSpouseDays, nil
		}
		return BereavementFirstDegreeDays, nil
	case entity.SubcategorySecondDegree:
		return BereavementSecondDegreeDays, nil
	}
	return 0, fmt.Errorf("%w: bereavement leave needs subcategory first_degree or second_degree, got %q", entity.ErrValidation, sub)
}
