package store

import (
	"context"

	"github.com/clintrovert/taskboard/pkg/types"
)

// PersonByUserID finds the person carrying an external user id
func PersonByUserID(ctx context.Context, uow UnitOfWork, userID string) (types.Person, bool, error) {
	people, err := uow.People().Find(ctx, func(p types.Person) bool { return p.UserID == userID })
	if err != nil {
		return types.Person{}, false, err
	}
	if len(people) == 0 {
		return types.Person{}, false, nil
	}
	return people[0], true, nil
}
