package api

import "github.com/liviudnicoara/attrshare"

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	// Attributes are the attribute letters (profession, hobby, skill) the
	// user applies for, e.g. "A,F,M".
	Attributes string `json:"attributes,omitempty"`
}

type LoginRequest struct {
	Username string
	Password string
}

// Form keeps username before password, the order the login handler reads.
func (r LoginRequest) Form() attrshare.Form {
	return attrshare.Form{}.
		Add("username", r.Username).
		Add("password", r.Password)
}

type UserInfo struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Nickname   string `json:"nickname"`
	Email      string `json:"email"`
	UserPic    string `json:"userPic"`
	Attributes string `json:"attributes"`
	CreateTime string `json:"createTime"`
	UpdateTime string `json:"updateTime"`
}

type ProfileUpdate struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
}

type AttributeUpdate struct {
	UserID     int64
	Attributes string
}

type PasswordUpdate struct {
	OldPassword string `json:"old_pwd"`
	NewPassword string `json:"new_pwd"`
	RePassword  string `json:"re_pwd"`
}

type Registration struct {
	UserID     int64  `json:"userId"`
	Username   string `json:"username"`
	Attributes string `json:"attributes"`
	Status     string `json:"status"`
}

type FileInfo struct {
	ID         int64  `json:"id"`
	FileName   string `json:"fileName"`
	Policy     string `json:"policy"`
	Username   string `json:"username"`
	UploadTime string `json:"uploadTime"`
}

type FilesEnvelope = attrshare.Envelope[[]FileInfo]
