package user

// ActorKind discriminates what a signed-in user may act as. It is resolved
// once from the user's role and faculty position, then carried with the
// session so that authorization checks never re-derive it.
type ActorKind string

const (
	ActorAdmin            ActorKind = "admin"
	ActorStudent          ActorKind = "student"
	ActorFaculty          ActorKind = "faculty"
	ActorClassAdvisor     ActorKind = "class-advisor"
	ActorCoordinator      ActorKind = "coordinator"
	ActorHOD              ActorKind = "hod"
	ActorPlacementManager ActorKind = "placement-manager"
)

// Actor is the authorization identity of a signed-in user: who they are
// plus the course/section scope their kind is bound to (empty when the
// kind is not scoped).
type Actor struct {
	Kind      ActorKind `json:"kind"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id,omitempty"`
	SectionID string    `json:"section_id,omitempty"`
}

// ResolveActor derives the Actor for a user. Faculty members acting in a
// named position (class advisor, coordinator, HOD) get that position as
// their kind; plain faculty stay ActorFaculty.
func ResolveActor(usr User) Actor {
	act := Actor{
		UserID:    usr.ID,
		CourseID:  usr.CourseID.String,
		SectionID: usr.SectionID.String,
	}
	switch usr.Role {
	case RoleAdmin:
		act.Kind = ActorAdmin
	case RoleStudent:
		act.Kind = ActorStudent
	case RolePlacementManager:
		act.Kind = ActorPlacementManager
	case RoleFaculty:
		switch usr.Position.String {
		case PositionClassAdvisor:
			act.Kind = ActorClassAdvisor
		case PositionCoordinator:
			act.Kind = ActorCoordinator
		case PositionHOD:
			act.Kind = ActorHOD
		default:
			act.Kind = ActorFaculty
		}
	}
	return act
}

func (a Actor) IsAdmin() bool            { return a.Kind == ActorAdmin }
func (a Actor) IsStudent() bool          { return a.Kind == ActorStudent }
func (a Actor) IsPlacementManager() bool { return a.Kind == ActorPlacementManager }

// IsStaff reports whether the actor holds any faculty position.
func (a Actor) IsStaff() bool {
	switch a.Kind {
	case ActorFaculty, ActorClassAdvisor, ActorCoordinator, ActorHOD:
		return true
	}
	return false
}
