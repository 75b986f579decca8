package messages

import (
	p "github.com/scott-ace-newton/messages-rw-sql/persistence"
)

type mockSqlClient struct {
	expectedStatus  p.Status
	expectedRecords []p.MessageRecord
	authenticated   bool

	createdUsers    []p.UserRecord
	createdMessages []p.MessageRecord
	lastAuthor      string
}

func (mc *mockSqlClient) CreateUser(ur p.UserRecord) p.Status {
	if mc.expectedStatus == p.CREATED {
		mc.createdUsers = append(mc.createdUsers, ur)
	}
	return mc.expectedStatus
}

func (mc *mockSqlClient) AuthenticateUser(username, password string) bool {
	return mc.authenticated
}

func (mc *mockSqlClient) CreateMessage(mr p.MessageRecord, author string) p.Status {
	if mc.expectedStatus == p.CREATED {
		mc.createdMessages = append(mc.createdMessages, mr)
		mc.lastAuthor = author
	}
	return mc.expectedStatus
}

func (mc *mockSqlClient) RetrieveMessages() ([]p.MessageRecord, p.Status) {
	return mc.expectedRecords, mc.expectedStatus
}

func (mc *mockSqlClient) ActiveConnection() bool {
	return true
}

type mockWeatherClient struct {
	temperature string
	err         error
	lookups     int
}

func (mw *mockWeatherClient) CurrentTemperature(latitude, longitude float64) (string, error) {
	mw.lookups++
	return mw.temperature, mw.err
}
