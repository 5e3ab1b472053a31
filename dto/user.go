// file: dto/user.go
package dto

type RegisterReq struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=8"`
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserProfileResp struct {
	ID          uint32 `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Score       int    `json:"score"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	Avatar      string `json:"avatar,omitempty"`
	Solved      int    `json:"solved"`
}
