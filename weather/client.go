package weather

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

//Lookuper provides an interface of Client functions. Useful for mocking
type Lookuper interface {
	CurrentTemperature(latitude, longitude float64) (string, error)
}

//Client is a simple client for the external weather service
type Client struct {
	serviceURL string
	httpClient *http.Client
}

//NewClient returns a weather client for the given service URL.
//Lookups are bounded by timeout so a slow provider can only delay,
//never wedge, the request being served.
func NewClient(serviceURL string, timeout time.Duration) Client {
	return Client{
		serviceURL: serviceURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

//coordinates is the request envelope sent to the weather service
type coordinates struct {
	XMLName   xml.Name `xml:"coordinates"`
	Latitude  float64  `xml:"latitude"`
	Longitude float64  `xml:"longitude"`
}

//report is the response envelope returned by the weather service,
//e.g. <weather><temperature>2</temperature><Unit>Celcius</Unit></weather>
type report struct {
	XMLName     xml.Name `xml:"weather"`
	Temperature string   `xml:"temperature"`
	Unit        string   `xml:"Unit"`
}

//CurrentTemperature asks the weather service for the current temperature at
//the given coordinates. Any transport, status or parse failure returns an
//error; callers are expected to treat that as "no weather available".
func (c Client) CurrentTemperature(latitude, longitude float64) (string, error) {
	payload, err := xml.Marshal(coordinates{Latitude: latitude, Longitude: longitude})
	if err != nil {
		return "", fmt.Errorf("encoding coordinates: %w", err)
	}

	resp, err := c.httpClient.Post(c.serviceURL, "application/xml", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("requesting weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading weather response: %w", err)
	}

	var rep report
	if err := xml.Unmarshal(body, &rep); err != nil {
		return "", fmt.Errorf("parsing weather response: %w", err)
	}
	if rep.Temperature == "" {
		return "", fmt.Errorf("weather response is missing a temperature")
	}
	return rep.Temperature, nil
}
