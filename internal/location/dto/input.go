package dto

type CreateLocationInput struct {
	Name string `json:"name"`
	// Slug defaults to the name when empty.
	Slug string `json:"slug"`
}
