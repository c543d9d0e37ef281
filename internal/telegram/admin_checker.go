package telegram

// AdminChecker recognises the single administrator.
type AdminChecker struct {
	adminID int64
}

func NewAdminChecker(adminID int64) *AdminChecker {
	return &AdminChecker{
		adminID: adminID,
	}
}

func (a *AdminChecker) IsAdmin(actorID int64) bool {
	return a.adminID != 0 && actorID == a.adminID
}

func (a *AdminChecker) AdminID() int64 {
	return a.adminID
}
