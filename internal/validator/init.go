package validator

import (
	"ctchen222/tictactoe-web/internal/game"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("game_mode", validateGameMode); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// validateGameMode accepts "two_player" and "vs_computer".
func validateGameMode(fl validator.FieldLevel) bool {
	return game.Mode(fl.Field().String()).Valid()
}
