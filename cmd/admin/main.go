package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"blackjack-server/internal/config"
	"blackjack-server/internal/jwt"
	"blackjack-server/internal/util"
	"blackjack-server/pkg/db"
	"blackjack-server/pkg/model"
	"blackjack-server/pkg/pitboss"
	"github.com/badoux/checkmail"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var command = flag.String("c", "user", "specifies the command (user, token, credit)")
var userID = flag.Int64("id", 0, "the user ID for the token and credit commands")
var amount = flag.String("amount", "", "the amount to credit, negative to debit")
var note = flag.String("note", "", "a note recorded with the credit")

func main() {
	flag.Parse()

	switch *command {
	case "user":
		createUser()
	case "token":
		if *userID <= 0 {
			logrus.Fatal("-id is required")
		}

		printToken(*userID)
	case "credit":
		credit()
	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func createUser() {
	email := getEmail()
	if email == "" {
		os.Exit(1)
	}

	name, err := getInput("Name")
	if err != nil {
		logrus.WithError(err).Fatal("could not get answer")
	}

	if name == "" {
		name = util.GetRandomName()
	}

	role := model.RoleDefault
	promote, err := getInput("Make admin (y/N)")
	if err != nil {
		logrus.WithError(err).Fatal("could not get answer")
	}

	if promote != "" && strings.ToLower(promote)[0] == 'y' {
		role = model.RoleAdmin
	}

	balance, err := config.Instance().StartingBalance()
	if err != nil {
		logrus.WithError(err).Fatal("invalid starting balance")
	}

	user, err := model.CreateUser(context.Background(), email, name, role, balance)
	if err != nil {
		logrus.WithError(err).Fatal("could not create user")
	}

	fmt.Printf("Created user %d (%s) with a balance of %s\n", user.ID, user.DisplayName, user.Balance.StringFixed(2))
	printToken(user.ID)
}

func credit() {
	if *userID <= 0 {
		logrus.Fatal("-id is required")
	}

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		logrus.WithError(err).Fatal("-amount must be a number")
	}

	p := pitboss.New(db.Instance(), nil, pitboss.Limits{})
	balance, err := p.AdjustBalance(context.Background(), *userID, amt, *note)
	if err != nil {
		logrus.WithError(err).Fatal("could not adjust balance")
	}

	fmt.Printf("User %d now has a balance of %s\n", *userID, balance.StringFixed(2))
}

func printToken(id int64) {
	jwt.LoadKeys()
	token, err := jwt.Sign(id)
	if err != nil {
		logrus.WithError(err).Fatal("could not sign token")
	}

	fmt.Println(token)
}

func getEmail() string {
	for {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		str, err := reader.ReadString('\n')
		if err != nil {
			logrus.WithError(err).Warn("could not read email")
		}

		str = strings.TrimRight(str, "\r\n")

		if str == "" {
			return ""
		}

		if err := checkmail.ValidateFormat(str); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			continue
		}

		return str
	}
}

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	reader := bufio.NewReader(os.Stdin)
	str, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(str, "\r\n"), nil
}
