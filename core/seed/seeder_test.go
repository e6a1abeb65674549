package seed_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/seed"
	"github.com/klu2500030136/lptd-app/core/user"
	logsvc "github.com/klu2500030136/lptd-app/services/logger"
	"github.com/klu2500030136/lptd-app/storage/kvrepo"
	"github.com/klu2500030136/lptd-app/storage/kvstore/inmem"
)

type fakeSource struct {
	students []seed.RemoteStudent
	err      error
	block    bool
	calls    int
}

func (f *fakeSource) FetchStudents(ctx context.Context) ([]seed.RemoteStudent, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.students, f.err
}

var _ = Describe("Seeder", func() {
	var (
		ctx     context.Context
		store   *inmem.Store
		userSvc *user.Service
		markSvc *mark.Service
		source  *fakeSource
		seeder  *seed.Seeder
		err     error
	)

	readUsers := func() []user.User {
		var users []user.User
		found, err := core.GetJSON(ctx, store, kvrepo.UsersKey, &users)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		return users
	}
	readMarks := func() []mark.MarkEntry {
		var marks []mark.MarkEntry
		found, err := core.GetJSON(ctx, store, kvrepo.MarksKey, &marks)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		return marks
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmem.Open()
		v := core.NewValidator()
		var svcErr error
		userSvc, svcErr = user.NewService(kvrepo.NewUserRepository(store), user.PlainTextHasher{}, v)
		Expect(svcErr).NotTo(HaveOccurred())
		markSvc, svcErr = mark.NewService(kvrepo.NewMarkRepository(store), userSvc, v)
		Expect(svcErr).NotTo(HaveOccurred())
		source = &fakeSource{}
	})

	JustBeforeEach(func() {
		var newErr error
		seeder, newErr = seed.NewSeeder(userSvc, markSvc, source, logsvc.NewNopLogger(), 50*time.Millisecond)
		Expect(newErr).NotTo(HaveOccurred())
		err = seeder.Seed(ctx)
	})

	When("the store is empty and the fetch fails", func() {
		BeforeEach(func() {
			source.err = errors.New("connection refused")
		})

		It("persists the fallback roster and the demo marks", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(readUsers()).To(Equal([]user.User{
				{ID: 1, Username: "admin", Password: "admin", Role: user.RoleAdmin, Name: "System Admin"},
				{ID: 2, Username: "teacher", Password: "teacher", Role: user.RoleTeacher, Name: "Mr. Smith"},
				{ID: 3, Username: "student", Password: "student", Role: user.RoleStudent, Name: "John Doe"},
			}))

			marks := readMarks()
			Expect(marks).To(HaveLen(3))
			for _, m := range marks {
				Expect(m.StudentID).To(Equal(101))
				Expect(m.StudentName).To(Equal("Arjun Reddy"))
				Expect(m.Score).To(Equal(m.Marks))
			}
			Expect(marks[0]).To(Equal(mark.MarkEntry{ID: 1, StudentID: 101, StudentName: "Arjun Reddy", Subject: "Mathematics", Marks: 85, Score: 85, CGPA: 8.5}))
			Expect(marks[1].CGPA).To(Equal(7.8))
			Expect(marks[2].Subject).To(Equal("Chemistry"))
		})

		It("is idempotent", func() {
			users, marks := readUsers(), readMarks()
			Expect(seeder.Seed(ctx)).To(Succeed())
			Expect(readUsers()).To(Equal(users))
			Expect(readMarks()).To(Equal(marks))
			Expect(source.calls).To(Equal(1))
		})
	})

	When("the fetch times out", func() {
		BeforeEach(func() {
			source.block = true
		})

		It("falls back to the built-in roster", func() {
			Expect(err).NotTo(HaveOccurred())
			users := readUsers()
			Expect(users).To(HaveLen(3))
			Expect(users[2].Name).To(Equal("John Doe"))
		})
	})

	When("the fetch succeeds", func() {
		BeforeEach(func() {
			source.students = []seed.RemoteStudent{
				{ID: 1, Name: "Arjun Reddy", RollNumber: "2100030001", Branch: "CSE"},
				{ID: 2, Name: "Meera Nair", RollNumber: " ", Branch: "ECE"},
				{ID: 3, Name: "Duplicate", RollNumber: "2100030001", Branch: "ME"},
				{ID: 4, Name: "Sneaky", RollNumber: "admin", Branch: "ME"},
			}
		})

		It("offsets remote ids and keeps usernames unique", func() {
			Expect(err).NotTo(HaveOccurred())
			users := readUsers()
			Expect(users).To(HaveLen(4))
			Expect(users[2]).To(Equal(user.User{ID: 101, Username: "2100030001", Password: "student", Role: user.RoleStudent, Name: "Arjun Reddy", Branch: "CSE"}))
			Expect(users[3]).To(Equal(user.User{ID: 102, Username: "student102", Password: "student", Role: user.RoleStudent, Name: "Meera Nair", Branch: "ECE"}))
		})

		When("remote ids collide", func() {
			BeforeEach(func() {
				source.students = []seed.RemoteStudent{
					{ID: 1, Name: "A", RollNumber: "r1"},
					{ID: 1, Name: "B", RollNumber: "r2"},
					{ID: -98, Name: "C", RollNumber: "r3"},
					{ID: -100, Name: "D", RollNumber: "r4"},
					{ID: 5, Name: "E", RollNumber: "r5"},
				}
			})

			It("keeps user ids unique and clear of the built-in users", func() {
				Expect(err).NotTo(HaveOccurred())
				users := readUsers()
				ids := make([]int, 0, len(users))
				for _, u := range users {
					ids = append(ids, u.ID)
				}
				Expect(ids).To(Equal([]int{1, 2, 101, 105}))

				usr, getErr := userSvc.GetByID(ctx, 101)
				Expect(getErr).NotTo(HaveOccurred())
				Expect(usr.Name).To(Equal("A"))
				_, authErr := userSvc.Authenticate(ctx, "r2", "student")
				Expect(authErr).To(MatchError(user.ErrInvalidCredentials))
			})
		})

		It("lets remote students log in", func() {
			usr, authErr := userSvc.Authenticate(ctx, "2100030001", "student")
			Expect(authErr).NotTo(HaveOccurred())
			Expect(usr.ID).To(Equal(101))

			perf, perfErr := markSvc.Performance(ctx, usr)
			Expect(perfErr).NotTo(HaveOccurred())
			Expect(perf.TotalSubjects).To(Equal(3))
			Expect(perf.OverallCGPA).To(Equal(8.5))
		})
	})

	When("data is already persisted", func() {
		BeforeEach(func() {
			Expect(core.SetJSON(ctx, store, kvrepo.UsersKey, []user.User{{ID: 7, Username: "x", Password: "x", Role: user.RoleTeacher}})).To(Succeed())
			Expect(core.SetJSON(ctx, store, kvrepo.MarksKey, []mark.MarkEntry{})).To(Succeed())
		})

		It("never overwrites it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(readUsers()).To(HaveLen(1))
			Expect(readMarks()).To(BeEmpty())
			Expect(source.calls).To(BeZero())
		})
	})

	When("only the marks are missing", func() {
		BeforeEach(func() {
			Expect(core.SetJSON(ctx, store, kvrepo.UsersKey, []user.User{})).To(Succeed())
		})

		It("seeds the marks only", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(readUsers()).To(BeEmpty())
			Expect(readMarks()).To(HaveLen(3))
		})
	})
})
