package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ageRange accepts a [min,max] pair of plausible ages in ascending order.
func ageRange(fl validator.FieldLevel) bool {
	pair, ok := fl.Field().Interface().([]int)
	if !ok || len(pair) != 2 {
		return false
	}
	lo, hi := pair[0], pair[1]
	return lo >= 0 && hi <= 120 && lo < hi
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("age_range", ageRange)
	}
}
