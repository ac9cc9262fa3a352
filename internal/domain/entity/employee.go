package entity

import "time"

// JobGradeManager marks the top manager who owns the second approval stage
const JobGradeManager = "manager"

// DefaultAnnualBalance is the opening balance of a newly registered employee
const DefaultAnnualBalance = 30

// Employee is the owner of a leave balance
type Employee struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Department          string    `json:"department"`
	JobGrade            string    `json:"job_grade"`
	Balance             int       `json:"balance"`
	NotificationAddress string    `json:"notification_address,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DepartmentHead maps a department to the employee who approves its first stage
type DepartmentHead struct {
	ID                  int64     `json:"id"`
	Department          string    `json:"department"`
	EmployeeID          int64     `json:"employee_id"`
	EmployeeName        string    `json:"employee_name,omitempty"`
	NotificationAddress string    `json:"notification_address,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
