package dto

// AdminStats aggregates school-wide counters for the admin dashboard.
type AdminStats struct {
	TotalStudents   int64 `json:"total_students"`
	TotalTeachers   int64 `json:"total_teachers"`
	TotalClasses    int64 `json:"total_classes"`
	TodayAttendance int64 `json:"today_attendance"`
	WeekAttendance  int64 `json:"week_attendance"`
	MonthAttendance int64 `json:"month_attendance"`
	PresentToday    int64 `json:"present_today"`
	AbsentToday     int64 `json:"absent_today"`
	LateToday       int64 `json:"late_today"`
}

// AdminDashboardResponse is the admin dashboard payload.
type AdminDashboardResponse struct {
	Stats             AdminStats           `json:"stats"`
	RecentAttendances []AttendanceResponse `json:"recent_attendances"`
}

// TeacherStats aggregates counters scoped to one recording teacher.
type TeacherStats struct {
	ManagedStudents int   `json:"managed_students"`
	TodayAttendance int64 `json:"today_attendance"`
	PresentToday    int64 `json:"present_today"`
	AbsentToday     int64 `json:"absent_today"`
}

// TeacherDashboardResponse is the teacher dashboard payload. Managed
// students are the homeroom roster for Wali Kelas, all students
// otherwise.
type TeacherDashboardResponse struct {
	Stats             TeacherStats         `json:"stats"`
	RecentAttendances []AttendanceResponse `json:"recent_attendances"`
	ManagedStudents   []UserLite           `json:"managed_students"`
}

// StudentStats counts the student's own records by status for the
// current month.
type StudentStats struct {
	TotalPresent int `json:"total_present"`
	TotalAbsent  int `json:"total_absent"`
	TotalLate    int `json:"total_late"`
	TotalExcused int `json:"total_excused"`
}

// StudentDashboardResponse is the student dashboard payload; QRCode is
// echoed so the client can render the credential for scanning.
type StudentDashboardResponse struct {
	Stats       StudentStats         `json:"stats"`
	Attendances []AttendanceResponse `json:"attendances"`
	QRCode      string               `json:"qr_code"`
}

// DashboardResponse wraps the role-specific payload; exactly one of
// the role fields is set.
type DashboardResponse struct {
	Role    string                    `json:"user_role"`
	Admin   *AdminDashboardResponse   `json:"admin,omitempty"`
	Teacher *TeacherDashboardResponse `json:"teacher,omitempty"`
	Student *StudentDashboardResponse `json:"student,omitempty"`
}
