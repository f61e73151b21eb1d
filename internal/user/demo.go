package user

import (
	"context"
	"errors"
	"fmt"
)

// DemoPassword is the password of the demo accounts.
const DemoPassword = "password"

// DemoAccounts are registered at startup when demo seeding is enabled.
var DemoAccounts = []RegisterInput{
	{Name: "田中先生", Email: "teacher@example.com", Role: RoleTeacher, School: "さくら中学校", Subjects: []string{"数学"}},
	{Name: "佐藤先生", Email: "science@example.com", Role: RoleTeacher, School: "さくら中学校", Subjects: []string{"理科"}},
	{Name: "山田花子", Email: "student@example.com", Role: RoleStudent, Grade: "中学2年生", School: "さくら中学校"},
}

// SeedDemo registers DemoAccounts, skipping accounts that already exist.
func SeedDemo(ctx context.Context, svc *Service) error {
	for _, in := range DemoAccounts {
		in.Password = DemoPassword
		if _, err := svc.Register(ctx, in); err != nil && !errors.Is(err, ErrEmailExists) {
			return fmt.Errorf("seed %s: %w", in.Email, err)
		}
	}
	return nil
}
