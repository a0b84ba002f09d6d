package schedsvc

import (
	"net/mail"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/notification"
	"github.com/trezcool/kampus/core/placement"
	"github.com/trezcool/kampus/core/user"
)

// system is the actor the scheduler runs as.
var system = user.Actor{Kind: user.ActorAdmin, UserID: "system"}

// Service runs the periodic placement jobs: filing auto leaves, drive-day
// reminders and application-deadline nudges. Production triggers RunDaily
// from cron via the admin CLI.
type Service struct {
	placements *placement.Service
	leaves     *leave.Service
	notifs     *notification.Service
	users      *user.Service
	mailSvc    core.EmailService
	logger     core.Logger
	conf       *core.Config
}

func NewService(
	placements *placement.Service,
	leaves *leave.Service,
	notifs *notification.Service,
	users *user.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		placements: placements,
		leaves:     leaves,
		notifs:     notifs,
		users:      users,
		mailSvc:    mailSvc,
		logger:     logger,
		conf:       conf,
	}
}

// RunDaily executes all jobs once; failures are logged, not fatal, so one
// broken job does not starve the others.
func (svc *Service) RunDaily() {
	if err := svc.AutoApplyLeaves(); err != nil {
		svc.logger.Error("scheduler: auto-applying leaves", err)
	}
	if err := svc.DriveReminders(); err != nil {
		svc.logger.Error("scheduler: sending drive reminders", err)
	}
	if err := svc.DeadlineApproaching(); err != nil {
		svc.logger.Error("scheduler: sending deadline notices", err)
	}
}

// AutoApplyLeaves files a pending leave for every non-rejected applicant of
// a placement whose drive is tomorrow. Students who already hold a leave
// for that day are skipped by the (student, date) dedup.
func (svc *Service) AutoApplyLeaves() error {
	tomorrow := core.Today().AddDate(0, 0, 1)
	placements, err := svc.placements.ByDriveDate(tomorrow)
	if err != nil {
		return err
	}

	for _, p := range placements {
		apps, err := svc.placements.Applications(system, p.ID)
		if err != nil {
			return err
		}
		for _, app := range apps {
			if app.Status == placement.AppRejected {
				continue
			}
			st, err := svc.users.GetByID(app.StudentID)
			if err != nil {
				svc.logger.Warn("scheduler: applicant not found", app.StudentID)
				continue
			}
			reason := "Placement Drive - " + p.Company
			if _, err := svc.leaves.CreateAuto(st.ID, st.SectionID.String, p.ID, reason, p.DriveDate); err != nil {
				return err
			}
		}
	}
	return nil
}

// DriveReminders notifies and emails every non-rejected applicant the day
// before the drive; the notification layer dedups repeated runs per day.
func (svc *Service) DriveReminders() error {
	tomorrow := core.Today().AddDate(0, 0, 1)
	placements, err := svc.placements.ByDriveDate(tomorrow)
	if err != nil {
		return err
	}

	for _, p := range placements {
		apps, err := svc.placements.Applications(system, p.ID)
		if err != nil {
			return err
		}
		title := "Drive tomorrow: " + p.Company
		msg := p.Company + " conducts its drive for " + p.Role + " tomorrow."
		for _, app := range apps {
			if app.Status == placement.AppRejected {
				continue
			}
			st, err := svc.users.GetByID(app.StudentID)
			if err != nil {
				continue
			}
			if _, err := svc.notifs.CreateForPlacement(st.ID, p.ID, title, msg, notification.TypeInfo); err != nil {
				return err
			}
			svc.mailSvc.SendMessages(&core.EmailMessage{
				To:           []mail.Address{{Name: st.Name, Address: st.Email}},
				Subject:      title,
				TemplateName: "placement-reminder",
				TemplateData: struct {
					Student   user.User
					Placement placement.Placement
				}{st, p},
			})
		}
	}
	return nil
}

// DeadlineApproaching nudges eligible students who have not applied to a
// placement closing today or tomorrow, provided they pass the skill gate
// with a completed resume.
func (svc *Service) DeadlineApproaching() error {
	today := core.Today()
	placements, err := svc.placements.ClosingBetween(today, today.AddDate(0, 0, 1))
	if err != nil {
		return err
	}

	for _, p := range placements {
		apps, err := svc.placements.Applications(system, p.ID)
		if err != nil {
			return err
		}
		applied := make(map[string]bool, len(apps))
		for _, app := range apps {
			applied[app.StudentID] = true
		}

		title := "Deadline approaching: " + p.Company
		msg := "Applications for " + p.Role + " at " + p.Company + " close on " + p.Deadline.Format("2006-01-02") + "."
		for _, courseID := range p.CourseIDs {
			students, err := svc.users.CourseStudents(courseID)
			if err != nil {
				return err
			}
			for _, st := range students {
				if applied[st.ID] || !st.IsActive || st.AdmissionStatus.String != user.AdmissionApproved {
					continue
				}
				if !svc.placements.MatchesResume(st, p) {
					continue
				}
				if _, err := svc.notifs.CreateForPlacement(st.ID, p.ID, title, msg, notification.TypeWarning); err != nil {
					return err
				}
				svc.mailSvc.SendMessages(&core.EmailMessage{
					To:           []mail.Address{{Name: st.Name, Address: st.Email}},
					Subject:      title,
					TemplateName: "placement-deadline",
					TemplateData: struct {
						Student   user.User
						Placement placement.Placement
					}{st, p},
				})
			}
		}
	}
	return nil
}
