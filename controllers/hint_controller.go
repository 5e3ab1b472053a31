// file: controllers/hint_controller.go
package controllers

import (
	"ctflab/dto"
	"ctflab/utils"

	"github.com/gin-gonic/gin"
)

// RevealHint 展开/收起提示；未确认时返回扣分说明
func (h *Controller) RevealHint(c *gin.Context) {
	var req dto.RevealHintReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Error(c, utils.CodeInvalidParams, "参数无效: "+err.Error())
			return
		}
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}

	reveal, err := h.Hints.RevealHint(c.Request.Context(), sess, c.Param("element"), req.Confirm)
	if err != nil {
		h.fail(c, err)
		return
	}

	msg := "success"
	if reveal.NeedsConfirmation {
		msg = "Using this hint deducts points when the challenge is solved"
	}
	utils.Success(c, msg, reveal)
}
