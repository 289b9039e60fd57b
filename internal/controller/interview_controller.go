package controller

import (
	"mock_interview_backend/internal/service"
	"mock_interview_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	InterviewService *service.InterviewService
}

func NewInterviewController(interviewService *service.InterviewService) *InterviewController {
	return &InterviewController{InterviewService: interviewService}
}

// Create godoc
// @Summary 生成模拟面试
// @Description 根据岗位、职位描述与工作年限生成面试题
// @Tags 面试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.CreateInterviewRequest true "岗位信息"
// @Success 201 {object} util.Response{data=model.MockInterview}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/interviews [post]
func (ctrl *InterviewController) Create(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	m, err := ctrl.InterviewService.Create(c.Request.Context(), claims.Identity(), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.Created(c, m)
}

// List godoc
// @Summary 面试历史
// @Description 当前用户创建的面试，按创建时间倒序
// @Tags 面试
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.InterviewSummary}
// @Router /api/interviews [get]
func (ctrl *InterviewController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	items, err := ctrl.InterviewService.List(c.Request.Context(), claims.Identity())
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.Success(c, items)
}

// Get godoc
// @Summary 面试详情
// @Description 返回题目列表，不含参考答案
// @Tags 面试
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=service.InterviewDetail}
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id} [get]
func (ctrl *InterviewController) Get(c *gin.Context) {
	detail, err := ctrl.InterviewService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.Success(c, detail)
}

// Feedback godoc
// @Summary 面试反馈
// @Description 当前用户在该面试下的答题记录、总评分与强弱项统计
// @Tags 面试
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=interview.FeedbackReport}
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id}/feedback [get]
func (ctrl *InterviewController) Feedback(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	report, err := ctrl.InterviewService.Feedback(c.Request.Context(), c.Param("id"), claims.Identity())
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.Success(c, report)
}

// ExportFeedback godoc
// @Summary 导出面试反馈
// @Description 将反馈报告以 JSON 文件写入存储并返回访问地址
// @Tags 面试
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "面试ID"
// @Success 200 {object} util.Response{data=service.ExportResult}
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/interviews/{id}/feedback/export [post]
func (ctrl *InterviewController) ExportFeedback(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	res, err := ctrl.InterviewService.ExportFeedback(c.Request.Context(), c.Param("id"), claims.Identity())
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.Success(c, res)
}

// Dashboard godoc
// @Summary 面试看板
// @Description 面试数量、已答题数、总体平均分与分段分布
// @Tags 面试
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.DashboardStats}
// @Router /api/dashboard [get]
func (ctrl *InterviewController) Dashboard(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	stats, err := ctrl.InterviewService.Dashboard(c.Request.Context(), claims.Identity())
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.Success(c, stats)
}
