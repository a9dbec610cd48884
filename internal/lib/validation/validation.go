// Package validation собирает валидатор запросов с доменными правилами:
// проверка строковых дат по формату из параметра тега и обязательность
// дней посещений для абонемента per_visit.
package validation

import (
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// New создает валидатор с зарегистрированными доменными правилами.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("datetime", validDatetime)
	v.RegisterStructValidation(validPlanVisitDays, models.DummyClient{}, models.DummyRenew{})
	return v
}

// validDatetime проверяет, что строка разбирается по layout из параметра тега.
func validDatetime(fl validator.FieldLevel) bool {
	_, err := time.Parse(fl.Param(), fl.Field().String())
	return err == nil
}

// validPlanVisitDays требует дни посещений для per_visit: omitempty в теге
// поля пропускает нулевое значение, а нулевые дни дают карточку,
// истёкшую в день оплаты.
func validPlanVisitDays(sl validator.StructLevel) {
	var plan string
	var visitDays int
	switch req := sl.Current().Interface().(type) {
	case models.DummyClient:
		plan, visitDays = req.Plan, req.VisitDays
	case models.DummyRenew:
		plan, visitDays = req.Plan, req.VisitDays
	}
	if plan == "per_visit" && visitDays == 0 {
		sl.ReportError(visitDays, "VisitDays", "VisitDays", "required", "")
	}
}
