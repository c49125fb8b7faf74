// Package sandbox materializes a dataset into a private, read-only SQLite
// database so that a student's SQL can be run against exactly the rows
// assigned to them.
//
// Each Sandbox owns one in-memory database. The tables are
//
//	Students(StudentID, FirstName, LastName, BirthDate, City, Email)
//	Courses(CourseID, CourseName, Credits, Department)
//	Lecturers(LecturerID, FirstName, LastName, City, HireDate, CourseID, Seniority)
//	Enrollments(StudentID, CourseID, EnrollmentDate, Grade)
//
// Enrollments may hold the same (StudentID, CourseID) pair more than once.
//
// After loading, the connection is switched to query_only and given an
// authorizer that admits only reads. Writes, DDL, ATTACH, transactions and
// pragma assignments fail with "not authorized".
package sandbox
