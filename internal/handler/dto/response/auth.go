package response

import "journal-backend/internal/usecase/queries"

type LoginResponse struct {
	AccessToken  string                          `json:"access_token"`
	RefreshToken string                          `json:"refresh_token"`
	Operator     *queries.AuthorizedOperatorView `json:"operator"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
