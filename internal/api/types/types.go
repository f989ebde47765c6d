// Package types holds the request/response payloads of the HTTP
// surface, the same role a goctl-generated internal/types/types.go
// plays for a gateway API.
package types

// LoginRequest is POST /auth/login's body.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse is returned by login, refresh, and validate.
type LoginResponse struct {
	Login        string   `json:"login"`
	Token        string   `json:"token"`
	Capabilities []string `json:"capabilities"`
	Groups       []string `json:"groups"`
}

// RegisterRequest is POST /auth/register's body.
type RegisterRequest struct {
	Login          string `json:"login"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptcha,optional"`
}

// RegisterResponse confirms a pending registration.
type RegisterResponse struct {
	Login   string `json:"login"`
	Pending bool   `json:"pending"`
}

// ChangePasswordRequest is POST /auth/change_password's body; the set-
// password token is carried in the Authorization header, not here.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// RecoverPasswordRequest is POST /auth/recover_password's body.
type RecoverPasswordRequest struct {
	Login string `json:"login"`
	Email string `json:"email"`
}

// ChangePasswordTokenResponse carries a freshly minted set-password
// token, returned by GET /user/<login>/change_password.
type ChangePasswordTokenResponse struct {
	Token string `json:"token"`
}

// UserView is the admin-facing user representation for GET /users and
// GET /user/<login>.
type UserView struct {
	Login        string   `json:"login"`
	Email        string   `json:"email"`
	Pending      bool     `json:"pending"`
	Disabled     bool     `json:"disabled"`
	FeedQuality  string   `json:"feed_quality"`
	Groups       []string `json:"groups"`
	Capabilities []string `json:"capabilities"`
}

// ListUsersResponse is GET /users's body.
type ListUsersResponse struct {
	Users []UserView `json:"users"`
}

// LoginPathRequest carries the :login path parameter shared by the
// user-management endpoints.
type LoginPathRequest struct {
	Login string `path:"login"`
}

// CreateUserRequest is POST /user/<login>'s body.
type CreateUserRequest struct {
	Login    string `path:"login"`
	Email    string `json:"email"`
	Password string `json:"password,optional"`
}

// EditUserRequest is PUT /user/<login>'s body — non-identity fields
// only.
type EditUserRequest struct {
	Login       string `path:"login"`
	Email       string `json:"email,optional"`
	Disabled    *bool  `json:"disabled,optional"`
	FeedQuality string `json:"feed_quality,optional"`
}

// ObjectPathRequest carries the {type}/{dhash} path parameters shared
// by the object surface.
type ObjectPathRequest struct {
	Type  string `path:"type"`
	Dhash string `path:"dhash"`
}

// ObjectView is what the access façade renders over HTTP.
type ObjectView struct {
	Dhash      string   `json:"dhash"`
	Type       string   `json:"type"`
	UploadTime string   `json:"upload_time"`
	Parents    []string `json:"parents"`
}

// CommentRequest is POST /{type}/{dhash}/comment's body.
type CommentRequest struct {
	Type    string `path:"type"`
	Dhash   string `path:"dhash"`
	Comment string `json:"comment"`
}

// CommentView renders one comment row.
type CommentView struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
}

// ListCommentsResponse is GET /{type}/{dhash}/comment's body.
type ListCommentsResponse struct {
	Comments []CommentView `json:"comments"`
}

// DeleteCommentRequest is DELETE /{type}/{dhash}/comment/{comment_id}'s
// path parameters.
type DeleteCommentRequest struct {
	Type      string `path:"type"`
	Dhash     string `path:"dhash"`
	CommentID string `path:"comment_id"`
}

// TagRequest is POST /{type}/{dhash}/tag's body.
type TagRequest struct {
	Type  string `path:"type"`
	Dhash string `path:"dhash"`
	Tag   string `json:"tag"`
}

// TagView renders one tag row.
type TagView struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

// ListTagsResponse is GET /{type}/{dhash}/tag's body.
type ListTagsResponse struct {
	Tags []TagView `json:"tags"`
}

// DeleteTagRequest is DELETE /{type}/{dhash}/tag/{tag_id}'s path
// parameters.
type DeleteTagRequest struct {
	Type  string `path:"type"`
	Dhash string `path:"dhash"`
	TagID string `path:"tag_id"`
}

// MetakeyRequest is POST /{type}/{dhash}/meta's body.
type MetakeyRequest struct {
	Type  string `path:"type"`
	Dhash string `path:"dhash"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MetakeyView renders one attribute row.
type MetakeyView struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ListMetakeysResponse is GET /{type}/{dhash}/meta's body.
type ListMetakeysResponse struct {
	Metakeys []MetakeyView `json:"metakeys"`
}

// DeleteMetakeyRequest is DELETE /{type}/{dhash}/meta/{metakey_id}'s
// path parameters.
type DeleteMetakeyRequest struct {
	Type      string `path:"type"`
	Dhash     string `path:"dhash"`
	MetakeyID string `path:"metakey_id"`
}

// SearchRequest is POST /search's body — a raw query string, matched as
// one term against the `name` field; it is not parsed as query syntax.
type SearchRequest struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

// SearchResponse is POST /search's body.
type SearchResponse struct {
	Results []string `json:"results"`
}
