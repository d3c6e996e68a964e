package entity

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username" validate:"required,min=3"`
	FavoriteGenre string `json:"favoriteGenre" validate:"required"`
}
