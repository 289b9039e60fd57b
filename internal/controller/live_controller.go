package controller

import (
	"mock_interview_backend/internal/config"
	"mock_interview_backend/internal/service"
	"mock_interview_backend/internal/util"
	"mock_interview_backend/pkg/logger"
	"mock_interview_backend/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LiveController 面试进行中的实时交互，WebSocket 与 REST 两种接入方式共用同一个运行实例
type LiveController struct {
	LiveService *service.LiveService
	Config      *config.Config
}

type OpenLiveRequest struct {
	SpeechSupported *bool `json:"speechSupported" example:"true"`
}

type FragmentRequest struct {
	Text  string `json:"text" binding:"required" example:"A goroutine is a lightweight thread"`
	Final bool   `json:"final" example:"true"`
}

func NewLiveController(liveService *service.LiveService, cfg *config.Config) *LiveController {
	return &LiveController{LiveService: liveService, Config: cfg}
}

// Open godoc
// @Summary 开始面试
// @Description 为当前用户打开面试运行实例，已打开时直接返回当前状态
// @Tags 面试进行
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Param request body OpenLiveRequest false "客户端能力"
// @Success 201 {object} util.Response{data=interview.LiveState}
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id}/live [post]
func (ctrl *LiveController) Open(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req OpenLiveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.BadRequest(c, err.Error())
			return
		}
	}
	supported := req.SpeechSupported == nil || *req.SpeechSupported

	run, created, err := ctrl.LiveService.Open(c.Request.Context(), claims.Identity(), c.Param("id"), supported)
	if err != nil {
		util.HandleError(c, err)
		return
	}
	if req.SpeechSupported != nil {
		run.Capture().SetSupported(supported)
	}
	if created {
		util.Created(c, run.Controller().State())
		return
	}
	util.Success(c, run.Controller().State())
}

// State godoc
// @Summary 当前面试状态
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id}/live [get]
func (ctrl *LiveController) State(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdState})
}

// Start godoc
// @Summary 开始录音
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/interviews/{id}/live/start [post]
func (ctrl *LiveController) Start(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdStart})
}

// Fragment godoc
// @Summary 提交识别片段
// @Description 非最终片段只更新预览，最终片段追加到答案
// @Tags 面试进行
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Param request body FragmentRequest true "识别片段"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Failure 409 {object} util.Response
// @Router /api/interviews/{id}/live/fragments [post]
func (ctrl *LiveController) Fragment(c *gin.Context) {
	var req FragmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	ctrl.handle(c, service.LiveCommand{
		Type: service.CmdFragment,
		Args: service.CommandArgs{Text: req.Text, Final: req.Final},
	})
}

// Stop godoc
// @Summary 结束录音并评分
// @Description 等待评分完成后返回结果
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=service.FinalizeView}
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Failure 502 {object} util.Response{data=service.FinalizeView}
// @Router /api/interviews/{id}/live/stop [post]
func (ctrl *LiveController) Stop(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdStop})
}

// Retry godoc
// @Summary 重新提交评分
// @Description 对上次评分失败的答案重新评分
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=service.FinalizeView}
// @Failure 409 {object} util.Response
// @Failure 502 {object} util.Response{data=service.FinalizeView}
// @Router /api/interviews/{id}/live/retry [post]
func (ctrl *LiveController) Retry(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdRetry})
}

// Next godoc
// @Summary 下一题
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Failure 400 {object} util.Response
// @Router /api/interviews/{id}/live/next [post]
func (ctrl *LiveController) Next(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdNext})
}

// Previous godoc
// @Summary 上一题
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Router /api/interviews/{id}/live/previous [post]
func (ctrl *LiveController) Previous(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdPrevious})
}

// Skip godoc
// @Summary 跳过当前题
// @Description 放弃当前回答，不评分
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Failure 400 {object} util.Response
// @Router /api/interviews/{id}/live/skip [post]
func (ctrl *LiveController) Skip(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdSkip})
}

// Speak godoc
// @Summary 朗读当前题
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Router /api/interviews/{id}/live/speak [post]
func (ctrl *LiveController) Speak(c *gin.Context) {
	ctrl.handle(c, service.LiveCommand{Type: service.CmdSpeak})
}

// Jump godoc
// @Summary 跳转到指定题
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Param index path int true "题目序号，从0开始"
// @Success 200 {object} util.Response{data=interview.LiveState}
// @Failure 400 {object} util.Response
// @Router /api/interviews/{id}/live/jump/{index} [post]
func (ctrl *LiveController) Jump(c *gin.Context) {
	index, err := util.ParseIndex(c.Param("index"))
	if err != nil {
		util.BadRequest(c, "invalid question index")
		return
	}
	ctrl.handle(c, service.LiveCommand{Type: service.CmdJump, Args: service.CommandArgs{Index: &index}})
}

// Close godoc
// @Summary 结束面试
// @Tags 面试进行
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id}/live [delete]
func (ctrl *LiveController) Close(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}
	if err := ctrl.LiveService.CloseRun(claims.Identity(), c.Param("id")); err != nil {
		util.HandleError(c, err)
		return
	}
	util.Success(c, nil)
}

// HandleWS godoc
// @Summary 面试 WebSocket 连接
// @Description 实时推送识别控制、朗读、回合状态与评分结果；不存在运行实例时自动打开
// @Tags 面试进行
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Param token query string false "JWT Token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/interviews/{id}/live/ws [get]
func (ctrl *LiveController) HandleWS(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	run, _, err := ctrl.LiveService.Open(c.Request.Context(), claims.Identity(), c.Param("id"), true)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	conn, err := service.LiveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.String("mockId", run.MockID()))
		return
	}
	limits := ctrl.Config.RateLimit
	service.ServeLive(run, conn, security.MessageLimiter(limits.LiveMessagesPerSecond, limits.LiveBurst))
}

func (ctrl *LiveController) handle(c *gin.Context, cmd service.LiveCommand) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	run, err := ctrl.LiveService.Get(claims.Identity(), c.Param("id"))
	if err != nil {
		util.HandleError(c, err)
		return
	}

	data, err := run.Handle(c.Request.Context(), cmd)
	if err != nil {
		// 评分失败或答案过短时仍返回回合结果，便于前端展示与重试
		if view, ok := data.(service.FinalizeView); ok {
			util.ErrorWithData(c, util.StatusFor(err), err.Error(), view)
			return
		}
		util.HandleError(c, err)
		return
	}
	util.Success(c, data)
}
