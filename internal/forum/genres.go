package forum

import (
	"filmdash/internal/validation"

	"github.com/go-playground/validator/v10"
)

// Genres is the fixed list a proposal may be tagged with, in form order
var Genres = []string{
	"Science Fiction", "Adventure", "Action", "Fantasy", "Animation", "Family",
	"Music", "Comedy", "War", "Thriller", "Crime", "Romance", "History",
	"Horror", "Mystery", "Drama", "Western", "Documentary",
}

// IsGenre reports whether name is on the list
func IsGenre(name string) bool {
	for _, g := range Genres {
		if g == name {
			return true
		}
	}
	return false
}

func init() {
	validation.Register("moviegenre", func(fl validator.FieldLevel) bool {
		return IsGenre(fl.Field().String())
	}, "%s must be one of the listed genres")
}
