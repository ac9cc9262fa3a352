package http

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/garyjia/leave-approval/internal/domain/entity"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the leave tags to gin's validator:
//
//	leavecategory  one of the known leave categories
//	leaverelation  empty or a first-degree relation
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if registerErr = v.RegisterValidation("leavecategory", func(fl validator.FieldLevel) bool {
			return entity.Category(fl.Field().String()).IsValid()
		}); registerErr != nil {
			return
		}
		registerErr = v.RegisterValidation("leaverelation", func(fl validator.FieldLevel) bool {
			r := fl.Field().String()
			return r == "" || entity.Relation(r).IsFirstDegree()
		})
	})
	return registerErr
}
