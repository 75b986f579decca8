package persistence

import (
	"database/sql"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	//sqlite driver
	_ "modernc.org/sqlite"

	"github.com/scott-ace-newton/messages-rw-sql/timestamp"
)

//Client for the SQLite database holding users and messages
type Client struct {
	db *sql.DB
}

//Status abstracts business logic layer from http status codes
//Status must be exported for handler tests
type Status int

const (
	CREATED Status = iota
	ALREADY_EXISTS
	BACKEND_ERROR
	NOT_FOUND
	OK
	NO_CONTENT
)

//Clienter provides an interface of Client functions. Useful for mocking
type Clienter interface {
	CreateUser(UserRecord) Status
	AuthenticateUser(username, password string) bool
	CreateMessage(MessageRecord, string) Status
	RetrieveMessages() ([]MessageRecord, Status)
	ActiveConnection() bool
}

//NewClient returns a SQLite client backed by the file at dbPath.
//The database file and its tables are created on first use.
func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.WithError(err).Errorf("error opening db at %s", dbPath)
		return nil, err
	}

	if err = db.Ping(); err != nil {
		log.WithError(err).Error("error establishing active connection to db")
		db.Close()
		return nil, err
	}

	// sqlite permits a single writer; one pooled connection also keeps
	// ":memory:" databases from splitting across connections in tests
	db.SetMaxOpenConns(1)

	userTable := `CREATE TABLE IF NOT EXISTS users (
		username varchar(50) NOT NULL,
		password varchar(100) NOT NULL,
		email varchar(50),
		userNickname varchar(50) NOT NULL,
		PRIMARY KEY (username))`
	_, err = db.Exec(userTable)
	if err != nil {
		log.WithError(err).Error("error creating users table")
		db.Close()
		return nil, err
	}

	messageTable := `CREATE TABLE IF NOT EXISTS messages (
		locationName TEXT,
		locationDescription TEXT,
		locationCity TEXT,
		locationCountry TEXT,
		locationStreetAddress TEXT,
		originalPoster TEXT,
		originalPostingTime INTEGER,
		latitude REAL,
		longitude REAL,
		weather TEXT)`
	_, err = db.Exec(messageTable)
	if err != nil {
		log.WithError(err).Error("error creating messages table")
		db.Close()
		return nil, err
	}

	return &Client{
		db: db,
	}, nil
}

//Close releases the underlying database handle
func (c *Client) Close() error {
	return c.db.Close()
}

//CreateUser will attempt to add the provided user to the DB.
//The password is stored as a salted bcrypt hash, never as plaintext.
func (c *Client) CreateUser(record UserRecord) Status {
	if c.userExists(record.Username) {
		log.WithField("username", record.Username).Info("user already exists!")
		return ALREADY_EXISTS
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(record.Password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).WithField("username", record.Username).Error("could not hash password")
		return BACKEND_ERROR
	}

	dbQuery := `INSERT INTO users (username, password, email, userNickname) VALUES (?, ?, ?, ?);`
	_, err = c.db.Exec(dbQuery, record.Username, string(hash), record.Email, record.Nickname)
	if err != nil {
		log.WithError(err).WithField("username", record.Username).Error("could not add user to db")
		return BACKEND_ERROR
	}
	log.WithField("username", record.Username).Info("created user record")
	return CREATED
}

func (c *Client) userExists(username string) bool {
	var found string
	err := c.db.QueryRow(`SELECT username FROM users WHERE username = ?;`, username).Scan(&found)
	return err == nil
}

//AuthenticateUser checks the provided credentials against the stored hash.
//Unknown usernames and wrong passwords are both rejected; the bcrypt
//comparison itself runs in constant time.
func (c *Client) AuthenticateUser(username, password string) bool {
	var storedHash string
	err := c.db.QueryRow(`SELECT password FROM users WHERE username = ?;`, username).Scan(&storedHash)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.WithError(err).WithField("username", username).Error("could not look up user credentials")
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

//CreateMessage will attempt to append the provided message to the DB.
//The author username is resolved to the user's current nickname at write
//time; the message is stored with the nickname, never the username.
func (c *Client) CreateMessage(msg MessageRecord, authorUsername string) Status {
	var nickname string
	err := c.db.QueryRow(`SELECT userNickname FROM users WHERE username = ?;`, authorUsername).Scan(&nickname)
	if err == sql.ErrNoRows {
		log.WithField("username", authorUsername).Error("message author has no user record")
		return NOT_FOUND
	}
	if err != nil {
		log.WithError(err).WithField("username", authorUsername).Error("could not resolve author nickname")
		return BACKEND_ERROR
	}

	postingTime, err := timestamp.ToMillis(msg.OriginalPostingTime)
	if err != nil {
		log.WithError(err).Errorf("could not convert posting time: %s", msg.OriginalPostingTime)
		return BACKEND_ERROR
	}

	var latitude, longitude interface{}
	if msg.HasCoordinates() {
		latitude = *msg.Latitude
		longitude = *msg.Longitude
	}

	dbQuery := `INSERT INTO messages (locationName, locationDescription, locationCity, locationCountry,
		locationStreetAddress, originalPoster, originalPostingTime, latitude, longitude, weather)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err = c.db.Exec(dbQuery, msg.LocationName, msg.LocationDescription, msg.LocationCity,
		msg.LocationCountry, msg.LocationStreetAddress, nickname, postingTime, latitude, longitude, msg.Weather)
	if err != nil {
		log.WithError(err).Error("could not add message to db")
		return BACKEND_ERROR
	}
	log.WithField("originalPoster", nickname).Infof("created message record for location %s", msg.LocationName)
	return CREATED
}

//RetrieveMessages returns every stored message in insertion order.
func (c *Client) RetrieveMessages() ([]MessageRecord, Status) {
	var results []MessageRecord

	rows, err := c.db.Query(`SELECT locationName, locationDescription, locationCity, locationCountry,
		locationStreetAddress, originalPoster, originalPostingTime, latitude, longitude, weather
		FROM messages;`)
	if err != nil {
		log.WithError(err).Error("failed to query messages")
		return results, BACKEND_ERROR
	}
	defer rows.Close()

	for rows.Next() {
		var name, description, city, country, address, poster, weather sql.NullString
		var postingTime sql.NullInt64
		var latitude, longitude sql.NullFloat64

		if err := rows.Scan(&name, &description, &city, &country, &address, &poster, &postingTime, &latitude, &longitude, &weather); err != nil {
			log.WithError(err).Error("failed to scan message row")
			return nil, BACKEND_ERROR
		}

		record := MessageRecord{
			LocationName:          validateString(name),
			LocationDescription:   validateString(description),
			LocationCity:          validateString(city),
			LocationCountry:       validateString(country),
			LocationStreetAddress: validateString(address),
			OriginalPoster:        validateString(poster),
			OriginalPostingTime:   timestamp.ToString(postingTime.Int64),
			Weather:               validateString(weather),
		}
		if latitude.Valid && longitude.Valid {
			record.Latitude = &latitude.Float64
			record.Longitude = &longitude.Float64
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		log.WithError(err).Error("failed to iterate message rows")
		return nil, BACKEND_ERROR
	}

	if len(results) == 0 {
		log.Info("no messages stored in db")
		return results, NO_CONTENT
	}
	return results, OK
}

func validateString(value sql.NullString) string {
	if value.Valid {
		return value.String
	}
	return ""
}

//ActiveConnection will check if still connected to DB
func (c *Client) ActiveConnection() bool {
	if err := c.db.Ping(); err != nil {
		log.WithError(err).Error("could not connect to db")
		return false
	}
	return true
}
