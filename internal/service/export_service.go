package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
)

// ExportService 报表导出：学费 Excel 台账、考试 ICS 日历
type ExportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(repo *repository.Repository, logger *zap.Logger) *ExportService {
	return &ExportService{repo: repo, logger: logger}
}

// TuitionReport 导出缴费台账 Excel（租户过滤后的全部流水）
func (s *ExportService) TuitionReport(ctx context.Context, tc *tenant.Context) (*bytes.Buffer, string, error) {
	if !tc.IsAdmin() {
		return nil, "", apperr.AccessDenied("仅管理员可导出缴费台账")
	}

	payments, err := s.repo.Tuition.List(ctx, tc)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Tuition"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"收据号", "学生", "证件号", "学校", "金额", "学期", "状态", "入账时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range payments {
		studentName, idNumber := "", ""
		if p.Student != nil && p.Student.User != nil {
			studentName = p.Student.User.FullName()
			idNumber = p.Student.User.IDNumber
		}
		values := []interface{}{
			p.ReceiptNumber,
			studentName,
			idNumber,
			p.School,
			p.Amount,
			p.Semester,
			p.Status,
			p.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("tuition_report_%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("缴费台账已导出",
		zap.Int("rows", len(payments)),
		zap.String("operator", tc.UserID))
	return buf, filename, nil
}

// ExamCalendar 导出考试日历（ICS）。
// 教师取自己创建的考试，学生取可参加的考试。
func (s *ExportService) ExamCalendar(ctx context.Context, tc *tenant.Context) (string, string, error) {
	var exams []*model.Exam
	var err error
	switch {
	case tc.IsTeacher():
		exams, err = s.repo.Exam.ListByTeacher(ctx, tc.ProfileID)
	case tc.IsStudent():
		exams, err = s.repo.Exam.ListByStudent(ctx, tc, tc.ProfileID)
	default:
		return "", "", apperr.AccessDenied("仅教师或学生可导出考试日历")
	}
	if err != nil {
		return "", "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//EdTech//Exam Calendar//EN")

	for _, exam := range exams {
		if !exam.IsActive {
			continue
		}
		event := cal.AddEvent(exam.ExamID + "@edtech")
		event.SetCreatedTime(exam.CreatedAt)
		event.SetDtStampTime(time.Now())
		event.SetStartAt(exam.Date)
		event.SetEndAt(exam.EndTime())
		event.SetSummary(exam.Title)
		if exam.Class != nil {
			event.SetLocation(exam.Class.Name)
		}
		event.SetDescription(fmt.Sprintf("时长 %d 分钟，总分 %.1f", exam.Duration, exam.TotalMarks))
	}

	filename := fmt.Sprintf("exam_calendar_%s.ics", time.Now().Format("20060102"))
	return cal.Serialize(), filename, nil
}
