package entity

import (
	"time"

	"github.com/garyjia/leave-approval/internal/domain/workflow"
)

// Category is the kind of leave requested
type Category string

const (
	CategoryAnnual      Category = "annual"
	CategoryBereavement Category = "bereavement"
	CategoryPilgrimage  Category = "pilgrimage"
	CategoryMarriage    Category = "marriage"
	CategoryMaternity   Category = "maternity"
	CategorySick        Category = "sick"
)

var validCategories = map[Category]bool{
	CategoryAnnual:      true,
	CategoryBereavement: true,
	CategoryPilgrimage:  true,
	CategoryMarriage:    true,
	CategoryMaternity:   true,
	CategorySick:        true,
}

// IsValid returns true for one of the six known categories
func (c Category) IsValid() bool {
	return validCategories[c]
}

// DebitsBalance returns true if approval consumes the employee's balance
func (c Category) DebitsBalance() bool {
	return c == CategoryAnnual
}

// Categories returns every known category
func Categories() []Category {
	return []Category{
		CategoryAnnual, CategoryBereavement, CategoryPilgrimage,
		CategoryMarriage, CategoryMaternity, CategorySick,
	}
}

// Subcategory refines bereavement and maternity leave
type Subcategory string

const (
	SubcategoryNone         Subcategory = ""
	SubcategoryFirstDegree  Subcategory = "first_degree"
	SubcategorySecondDegree Subcategory = "second_degree"
	SubcategorySingleton    Subcategory = "singleton"
	SubcategoryTwin         Subcategory = "twin"
)

// Relation is the kinship of a deceased first-degree relative
type Relation string

const (
	RelationNone        Relation = ""
	RelationFather      Relation = "father"
	RelationMother      Relation = "mother"
	RelationSon         Relation = "son"
	RelationDaughter    Relation = "daughter"
	RelationGrandfather Relation = "grandfather"
	RelationGrandmother Relation = "grandmother"
	RelationSpouse      Relation = "spouse"
)

var firstDegreeRelations = map[Relation]bool{
	RelationFather:      true,
	RelationMother:      true,
	RelationSon:         true,
	RelationDaughter:    true,
	RelationGrandfather: true,
	RelationGrandmother: true,
	RelationSpouse:      true,
}

// IsFirstDegree returns true for relations accepted on first-degree bereavement leave
func (r Relation) IsFirstDegree() bool {
	return firstDegreeRelations[r]
}

// LeaveRequest is one employee's request for a period of leave
type LeaveRequest struct {
	ID              int64          `json:"id"`
	EmployeeID      int64          `json:"employee_id"`
	EmployeeName    string         `json:"employee_name,omitempty"`
	Department      string         `json:"department,omitempty"`
	Category        Category       `json:"category"`
	Subcategory     Subcategory    `json:"subcategory,omitempty"`
	Relation        Relation       `json:"relation,omitempty"`
	Period          DateRange      `json:"period"`
	Duration        int            `json:"duration"`
	Note            string         `json:"note,omitempty"`
	Status          workflow.State `json:"status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ApprovedBy      string         `json:"approved_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// RequestHistory is one committed transition of a leave request
type RequestHistory struct {
	ID         int64            `json:"id"`
	RequestID  int64            `json:"request_id"`
	FromStatus workflow.State   `json:"from_status,omitempty"`
	ToStatus   workflow.State   `json:"to_status"`
	Action     workflow.Trigger `json:"action"`
	Actor      string           `json:"actor"`
	Reason     string           `json:"reason,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
